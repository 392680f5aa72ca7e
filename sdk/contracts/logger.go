package contracts

import "time"

// LogLevel represents the severity level for logging. The zero value means
// "not configured" and is replaced by InfoLevel when options are applied.
type LogLevel int

const (
	// DebugLevel enables per-packet and per-transition detail.
	DebugLevel LogLevel = iota + 1
	// InfoLevel indicates informational messages such as connection changes.
	InfoLevel
	// WarnLevel indicates dropped data or recoverable transfer failures.
	WarnLevel
	// ErrorLevel indicates I/O failures that end a connection or input loop.
	ErrorLevel
	// FatalLevel indicates errors after which the process exits.
	FatalLevel
)

// LogDestination specifies where the log messages should be directed.
type LogDestination string

const (
	// ConsoleLog directs log messages to stderr.
	ConsoleLog LogDestination = "console"
	// FileLog directs log messages to a file.
	FileLog LogDestination = "file"
)

// Field is a typed log field builder. Each method returns a new Field.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger records messages at different levels.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
