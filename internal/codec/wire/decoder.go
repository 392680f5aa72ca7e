// Package wire converts between MIDI wire bytes and channel events.
package wire

import "github.com/leandrodaf/midiwire/sdk/contracts"

type state int

// Order matches (status >> 4) & 0x07 for status bytes 0x80-0xFF.
const (
	stateNoteOff state = iota
	stateNoteOn
	statePolyTouch
	stateControlChange
	stateProgramChange
	stateAftertouch
	statePitchBend
	stateNone
)

const noPending = -1

// Decoder turns a MIDI byte stream into channel events. It keeps running
// status across calls, so a message may be split over any number of
// OnBytesReceived calls. Bytes that belong to no channel message are passed
// on through OnRawByte. A Decoder must not be shared between streams.
type Decoder struct {
	receiver contracts.MidiReceiver
	state    state
	channel  int
	first    int
}

// NewDecoder returns a Decoder delivering to receiver.
func NewDecoder(receiver contracts.MidiReceiver) *Decoder {
	return &Decoder{receiver: receiver, state: stateNone, first: noPending}
}

// OnBytesReceived decodes buf. It never fails.
func (d *Decoder) OnBytesReceived(buf []byte) error {
	for _, b := range buf {
		d.processByte(b)
	}
	return nil
}

// BeginBlock forwards the hint to the receiver.
func (d *Decoder) BeginBlock() bool {
	return d.receiver.BeginBlock()
}

// EndBlock forwards the hint to the receiver.
func (d *Decoder) EndBlock() error {
	d.receiver.EndBlock()
	return nil
}

// Reset drops running status and any pending data byte.
func (d *Decoder) Reset() {
	d.state = stateNone
	d.first = noPending
}

func (d *Decoder) processByte(b byte) {
	if b&0x80 != 0 {
		d.processStatus(b)
		return
	}

	v := int(b)
	switch d.state {
	case stateNoteOff, stateNoteOn, statePolyTouch, stateControlChange:
		if d.first == noPending {
			d.first = v
			return
		}
		first := d.first
		d.first = noPending
		switch d.state {
		case stateNoteOff:
			d.receiver.OnNoteOff(d.channel, first, v)
		case stateNoteOn:
			d.receiver.OnNoteOn(d.channel, first, v)
		case statePolyTouch:
			d.receiver.OnPolyAftertouch(d.channel, first, v)
		default:
			d.receiver.OnControlChange(d.channel, first, v)
		}
	case stateProgramChange:
		d.receiver.OnProgramChange(d.channel, v)
	case stateAftertouch:
		d.receiver.OnAftertouch(d.channel, v)
	case statePitchBend:
		if d.first == noPending {
			d.first = v
			return
		}
		d.receiver.OnPitchBend(d.channel, ((v<<7)|d.first)-8192)
		d.first = noPending
	default:
		d.receiver.OnRawByte(b)
	}
}

func (d *Decoder) processStatus(b byte) {
	s := state((b >> 4) & 0x07)
	if s != stateNone {
		d.state = s
		d.channel = int(b & 0x0F)
		d.first = noPending
		return
	}

	// System bytes. Real-time bytes (0xF8-0xFF) may appear anywhere and leave
	// running status alone; system common bytes cancel it.
	if b < 0xF8 {
		d.state = stateNone
		d.first = noPending
	}
	d.receiver.OnRawByte(b)
}
