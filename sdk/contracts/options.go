package contracts

import "time"

// MIDICommand is the status nibble of a channel message, used both to tag
// Events and to filter them.
type MIDICommand byte

const (
	// RawByte tags an Event carrying a byte outside any channel message.
	RawByte MIDICommand = 0x00
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn         MIDICommand = 0x90
	PolyAftertouch MIDICommand = 0xA0
	ControlChange  MIDICommand = 0xB0
	ProgramChange  MIDICommand = 0xC0
	Aftertouch     MIDICommand = 0xD0
	PitchBend      MIDICommand = 0xE0
)

func (c MIDICommand) String() string {
	switch c {
	case RawByte:
		return "RawByte"
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyAftertouch:
		return "PolyAftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case Aftertouch:
		return "Aftertouch"
	case PitchBend:
		return "PitchBend"
	}
	return "Unknown"
}

// AnyCable disables virtual cable filtering on USB inputs.
const AnyCable = -1

// MIDIEventFilter allows users to specify which MIDI commands to deliver.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to let through.
}

// Allows reports whether cmd passes the filter. A nil filter allows everything.
func (f *MIDIEventFilter) Allows(cmd MIDICommand) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// USBConfig holds USB-MIDI framing parameters.
type USBConfig struct {
	InputCable  int           // Virtual cable to accept on inputs, or AnyCable.
	OutputCable int           // Virtual cable tag for outgoing packets (0-15).
	ReadTimeout time.Duration // Timeout of a single bulk read.
	PacketSize  int           // Endpoint max packet size; a multiple of 4.
}

// BluetoothConfig holds serial byte-stream parameters.
type BluetoothConfig struct {
	ReadBufferSize int   // Size of the reader's buffer.
	RFCOMMChannel  uint8 // RFCOMM channel used by the socket dialer.
	BaudRate       int   // Baud rate used by the serial tty dialer.
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// Options defines the configuration shared by all transports.
type Options struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for delivered channel events.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
	USB             USBConfig
	Bluetooth       BluetoothConfig
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to the file at path.
func WithLogFile(path string) Option {
	return func(opts *Options) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter restricts the channel events delivered to event receivers.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *Options) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *Options) {
		opts.CoreMIDIConfig = &config
	}
}

// WithInputCable sets the virtual cable accepted by USB inputs.
func WithInputCable(cable int) Option {
	return func(opts *Options) {
		opts.USB.InputCable = cable
	}
}

// WithOutputCable sets the virtual cable used by USB outputs.
func WithOutputCable(cable int) Option {
	return func(opts *Options) {
		opts.USB.OutputCable = cable
	}
}

// WithReadTimeout sets the timeout of a single USB bulk read.
func WithReadTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.USB.ReadTimeout = d
	}
}

// WithPacketSize sets the USB endpoint packet size.
func WithPacketSize(n int) Option {
	return func(opts *Options) {
		opts.USB.PacketSize = n
	}
}

// WithReadBufferSize sets the Bluetooth reader buffer size.
func WithReadBufferSize(n int) Option {
	return func(opts *Options) {
		opts.Bluetooth.ReadBufferSize = n
	}
}

// WithRFCOMMChannel sets the RFCOMM channel for socket connections.
func WithRFCOMMChannel(ch uint8) Option {
	return func(opts *Options) {
		opts.Bluetooth.RFCOMMChannel = ch
	}
}

// WithBaudRate sets the baud rate for serial tty connections.
func WithBaudRate(baud int) Option {
	return func(opts *Options) {
		opts.Bluetooth.BaudRate = baud
	}
}
