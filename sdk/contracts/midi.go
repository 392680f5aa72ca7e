package contracts

// RawByteReceiver consumes wire-format MIDI bytes. Transports implement it on
// the outbound side, decoders implement it on the inbound side.
type RawByteReceiver interface {
	// OnBytesReceived processes buf in order. The receiver must not retain buf.
	OnBytesReceived(buf []byte) error

	// BeginBlock starts collecting subsequent writes into one unit. It reports
	// whether block mode is supported; callers must treat it as a hint.
	BeginBlock() bool

	// EndBlock concludes a block started by BeginBlock, e.g. by performing a
	// single transfer of everything written since.
	EndBlock() error
}

// MidiReceiver is the event sink for decoded MIDI. Channels are 0-15, data
// values 0-127; pitch bend values are centered on zero (-8192..8191).
type MidiReceiver interface {
	OnNoteOff(ch, note, vel int)
	OnNoteOn(ch, note, vel int)
	OnPolyAftertouch(ch, note, vel int)
	OnControlChange(ch, ctl, val int)
	OnProgramChange(ch, pgm int)
	OnAftertouch(ch, vel int)
	OnPitchBend(ch, val int)

	// OnRawByte receives every byte that is not part of a channel message.
	OnRawByte(b byte)

	BeginBlock() bool
	EndBlock()
}

// MidiWriter is the outbound counterpart of MidiReceiver. Every call emits a
// complete message; write failures of the underlying sink are returned.
type MidiWriter interface {
	NoteOff(ch, note, vel int) error
	NoteOn(ch, note, vel int) error
	PolyAftertouch(ch, note, vel int) error
	ControlChange(ch, ctl, val int) error
	ProgramChange(ch, pgm int) error
	Aftertouch(ch, vel int) error
	PitchBend(ch, val int) error
	RawByte(b byte) error

	// Encode writes an Event through the matching method above.
	Encode(ev Event) error

	BeginBlock() bool
	EndBlock() error
}

// SystemMessageReceiver handles system exclusive, system common and system
// real-time messages. SysEx payloads exclude the 0xF0/0xF7 framing bytes.
type SystemMessageReceiver interface {
	OnSystemExclusive(payload []byte)
	OnTimeCode(value int)
	OnSongPosition(pointer int)
	OnSongSelect(index int)
	OnTuneRequest()
	OnTimingClock()
	OnStart()
	OnContinue()
	OnStop()
	OnActiveSensing()
	OnSystemReset()
}

// Event is a single channel event or raw byte.
//
// Note carries the key for note and poly aftertouch events and the controller
// number for control changes. Value carries velocity, controller value,
// program, pressure, the centered pitch bend, or the raw byte.
type Event struct {
	Command MIDICommand
	Channel int
	Note    int
	Value   int
}

// SystemMessage is a decoded system message. Data is set for SystemExclusive,
// Value for TimeCode, SongPosition and SongSelect.
type SystemMessage struct {
	Kind  SystemKind
	Data  []byte
	Value int
}

// SystemKind identifies a system message by its status byte.
type SystemKind byte

const (
	SystemExclusive SystemKind = 0xF0
	TimeCode        SystemKind = 0xF1
	SongPosition    SystemKind = 0xF2
	SongSelect      SystemKind = 0xF3
	TuneRequest     SystemKind = 0xF6
	TimingClock     SystemKind = 0xF8
	Start           SystemKind = 0xFA
	Continue        SystemKind = 0xFB
	Stop            SystemKind = 0xFC
	ActiveSensing   SystemKind = 0xFE
	SystemReset     SystemKind = 0xFF
)

func (k SystemKind) String() string {
	switch k {
	case SystemExclusive:
		return "SystemExclusive"
	case TimeCode:
		return "TimeCode"
	case SongPosition:
		return "SongPosition"
	case SongSelect:
		return "SongSelect"
	case TuneRequest:
		return "TuneRequest"
	case TimingClock:
		return "TimingClock"
	case Start:
		return "Start"
	case Continue:
		return "Continue"
	case Stop:
		return "Stop"
	case ActiveSensing:
		return "ActiveSensing"
	case SystemReset:
		return "SystemReset"
	}
	return "Unknown"
}

// SystemMessageWriter encodes system messages. Out-of-range values are
// rejected with ErrInvalidArgument before anything is written.
type SystemMessageWriter interface {
	SystemExclusive(payload []byte) error
	TimeCode(value int) error
	SongPosition(pointer int) error
	SongSelect(index int) error
	TuneRequest() error
	TimingClock() error
	Start() error
	Continue() error
	Stop() error
	ActiveSensing() error
	SystemReset() error
	Encode(msg SystemMessage) error
}
