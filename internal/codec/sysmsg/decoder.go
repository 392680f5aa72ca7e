// Package sysmsg decodes and encodes MIDI system messages: system exclusive,
// system common and system real-time.
package sysmsg

import "github.com/leandrodaf/midiwire/sdk/contracts"

type state int

const (
	stateNone state = iota
	stateSystemExclusive
	stateTimeCode
	stateSongPosition
	stateSongSelect
)

// Decoder extracts system messages from a MIDI byte stream, one byte at a
// time. Real-time bytes never change its state, so they may be interleaved
// with a SysEx transmission.
type Decoder struct {
	receiver contracts.SystemMessageReceiver
	state    state
	first    int
	buffer   []byte
}

// NewDecoder returns a Decoder delivering to receiver.
func NewDecoder(receiver contracts.SystemMessageReceiver) *Decoder {
	return &Decoder{receiver: receiver, first: -1}
}

// DecodeByte handles b and reports whether it was consumed as part of a
// system message. Unhandled bytes belong to someone else.
func (d *Decoder) DecodeByte(b byte) bool {
	switch b {
	case 0xF0:
		d.buffer = d.buffer[:0]
		d.state = stateSystemExclusive
	case 0xF1:
		d.state = stateTimeCode
	case 0xF2:
		d.first = -1
		d.state = stateSongPosition
	case 0xF3:
		d.state = stateSongSelect
	case 0xF6:
		d.receiver.OnTuneRequest()
		d.state = stateNone
	case 0xF7:
		if d.state == stateSystemExclusive {
			payload := make([]byte, len(d.buffer))
			copy(payload, d.buffer)
			d.receiver.OnSystemExclusive(payload)
		}
		d.state = stateNone
	case 0xF8:
		d.receiver.OnTimingClock()
	case 0xFA:
		d.receiver.OnStart()
	case 0xFB:
		d.receiver.OnContinue()
	case 0xFC:
		d.receiver.OnStop()
	case 0xFE:
		d.receiver.OnActiveSensing()
	case 0xFF:
		d.receiver.OnSystemReset()
	default:
		if b&0x80 != 0 {
			d.state = stateNone
			return false
		}
		return d.decodeData(b)
	}
	return true
}

func (d *Decoder) decodeData(b byte) bool {
	switch d.state {
	case stateSystemExclusive:
		d.buffer = append(d.buffer, b)
	case stateTimeCode:
		d.receiver.OnTimeCode(int(b))
		d.state = stateNone
	case stateSongPosition:
		if d.first < 0 {
			d.first = int(b)
			return true
		}
		d.receiver.OnSongPosition(int(b)<<7 | d.first)
		d.state = stateNone
	case stateSongSelect:
		d.receiver.OnSongSelect(int(b))
		d.state = stateNone
	default:
		return false
	}
	return true
}
