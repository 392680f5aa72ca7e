package sysmsg

import (
	"fmt"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Encoder writes system messages as wire bytes. Multi-byte messages are
// wrapped in a block so block-capable sinks send them in one transfer.
type Encoder struct {
	sink contracts.RawByteReceiver
}

var _ contracts.SystemMessageWriter = (*Encoder)(nil)

// NewEncoder returns an Encoder writing into sink.
func NewEncoder(sink contracts.RawByteReceiver) *Encoder {
	return &Encoder{sink: sink}
}

// SystemExclusive frames payload with 0xF0/0xF7. Payload bytes must be 7-bit.
func (e *Encoder) SystemExclusive(payload []byte) error {
	for i, b := range payload {
		if b&0x80 != 0 {
			return fmt.Errorf("%w: sysex byte %d is 0x%02X", contracts.ErrInvalidArgument, i, b)
		}
	}
	msg := make([]byte, 0, len(payload)+2)
	msg = append(msg, 0xF0)
	msg = append(msg, payload...)
	msg = append(msg, 0xF7)
	return e.writeBlock(msg)
}

// TimeCode writes a MIDI time code quarter frame.
func (e *Encoder) TimeCode(value int) error {
	if value < 0 || value > 0x7F {
		return fmt.Errorf("%w: time code out of range: %d", contracts.ErrInvalidArgument, value)
	}
	return e.writeBlock([]byte{0xF1, byte(value)})
}

// SongPosition writes a song position pointer in 0..0x3FFF.
func (e *Encoder) SongPosition(pointer int) error {
	if pointer < 0 || pointer > 0x3FFF {
		return fmt.Errorf("%w: song position pointer out of range: %d", contracts.ErrInvalidArgument, pointer)
	}
	return e.writeBlock([]byte{0xF2, byte(pointer & 0x7F), byte(pointer >> 7)})
}

// SongSelect writes a song index in 0..0x7F.
func (e *Encoder) SongSelect(index int) error {
	if index < 0 || index > 0x7F {
		return fmt.Errorf("%w: song index out of range: %d", contracts.ErrInvalidArgument, index)
	}
	return e.writeBlock([]byte{0xF3, byte(index)})
}

func (e *Encoder) TuneRequest() error   { return e.write(0xF6) }
func (e *Encoder) TimingClock() error   { return e.write(0xF8) }
func (e *Encoder) Start() error         { return e.write(0xFA) }
func (e *Encoder) Continue() error      { return e.write(0xFB) }
func (e *Encoder) Stop() error          { return e.write(0xFC) }
func (e *Encoder) ActiveSensing() error { return e.write(0xFE) }
func (e *Encoder) SystemReset() error   { return e.write(0xFF) }

// Encode writes msg through the matching method above.
func (e *Encoder) Encode(msg contracts.SystemMessage) error {
	switch msg.Kind {
	case contracts.SystemExclusive:
		return e.SystemExclusive(msg.Data)
	case contracts.TimeCode:
		return e.TimeCode(msg.Value)
	case contracts.SongPosition:
		return e.SongPosition(msg.Value)
	case contracts.SongSelect:
		return e.SongSelect(msg.Value)
	case contracts.TuneRequest, contracts.TimingClock, contracts.Start, contracts.Continue,
		contracts.Stop, contracts.ActiveSensing, contracts.SystemReset:
		return e.write(byte(msg.Kind))
	}
	return fmt.Errorf("%w: unknown system message 0x%02X", contracts.ErrInvalidArgument, byte(msg.Kind))
}

func (e *Encoder) write(b byte) error {
	return e.sink.OnBytesReceived([]byte{b})
}

func (e *Encoder) writeBlock(msg []byte) error {
	inBlock := e.sink.BeginBlock()
	err := e.sink.OnBytesReceived(msg)
	if inBlock {
		if endErr := e.sink.EndBlock(); err == nil {
			err = endErr
		}
	}
	return err
}
