package wire

import (
	"fmt"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Encoder writes channel events as wire bytes. It is stateless: every call
// emits a full status byte, running status is never produced.
type Encoder struct {
	sink contracts.RawByteReceiver
}

// NewEncoder returns an Encoder writing into sink.
func NewEncoder(sink contracts.RawByteReceiver) *Encoder {
	return &Encoder{sink: sink}
}

var _ contracts.MidiWriter = (*Encoder)(nil)

// NoteOff writes a Note Off with release velocity vel.
func (e *Encoder) NoteOff(ch, note, vel int) error {
	return e.write3(0x80, ch, note, vel)
}

// NoteOn writes a Note On. A velocity of 0 is a Note Off by convention.
func (e *Encoder) NoteOn(ch, note, vel int) error {
	return e.write3(0x90, ch, note, vel)
}

// PolyAftertouch writes per-key pressure for note.
func (e *Encoder) PolyAftertouch(ch, note, vel int) error {
	return e.write3(0xA0, ch, note, vel)
}

// ControlChange sets controller ctl to val.
func (e *Encoder) ControlChange(ch, ctl, val int) error {
	return e.write3(0xB0, ch, ctl, val)
}

// ProgramChange selects program pgm.
func (e *Encoder) ProgramChange(ch, pgm int) error {
	return e.write2(0xC0, ch, pgm)
}

// Aftertouch writes channel pressure.
func (e *Encoder) Aftertouch(ch, vel int) error {
	return e.write2(0xD0, ch, vel)
}

// PitchBend writes a centered value in -8192..8191.
func (e *Encoder) PitchBend(ch, val int) error {
	val += 8192
	return e.write3(0xE0, ch, val&0x7F, (val>>7)&0x7F)
}

// RawByte writes b unmodified.
func (e *Encoder) RawByte(b byte) error {
	return e.sink.OnBytesReceived([]byte{b})
}

// Encode dispatches ev to the matching writer method.
func (e *Encoder) Encode(ev contracts.Event) error {
	switch ev.Command {
	case contracts.NoteOff:
		return e.NoteOff(ev.Channel, ev.Note, ev.Value)
	case contracts.NoteOn:
		return e.NoteOn(ev.Channel, ev.Note, ev.Value)
	case contracts.PolyAftertouch:
		return e.PolyAftertouch(ev.Channel, ev.Note, ev.Value)
	case contracts.ControlChange:
		return e.ControlChange(ev.Channel, ev.Note, ev.Value)
	case contracts.ProgramChange:
		return e.ProgramChange(ev.Channel, ev.Value)
	case contracts.Aftertouch:
		return e.Aftertouch(ev.Channel, ev.Value)
	case contracts.PitchBend:
		return e.PitchBend(ev.Channel, ev.Value)
	case contracts.RawByte:
		return e.RawByte(byte(ev.Value))
	}
	return fmt.Errorf("%w: unknown command 0x%02X", contracts.ErrInvalidArgument, byte(ev.Command))
}

// BeginBlock asks the sink to hold the following messages until EndBlock.
// It reports whether the sink supports blocks.
func (e *Encoder) BeginBlock() bool {
	return e.sink.BeginBlock()
}

// EndBlock tells the sink to send what it held since BeginBlock.
func (e *Encoder) EndBlock() error {
	return e.sink.EndBlock()
}

func (e *Encoder) write2(msg byte, ch, a int) error {
	return e.sink.OnBytesReceived([]byte{status(msg, ch), byte(a) & 0x7F})
}

func (e *Encoder) write3(msg byte, ch, a, b int) error {
	return e.sink.OnBytesReceived([]byte{status(msg, ch), byte(a) & 0x7F, byte(b) & 0x7F})
}

func status(msg byte, ch int) byte {
	return msg | byte(ch)&0x0F
}
