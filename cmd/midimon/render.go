package main

import (
	"fmt"

	"github.com/leandrodaf/midiwire/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// toMessage rebuilds the wire form of a decoded event. Raw bytes come back
// as a one-byte message.
func toMessage(ev contracts.Event) gomidi.Message {
	ch := uint8(ev.Channel)
	switch ev.Command {
	case contracts.NoteOff:
		return gomidi.NoteOffVelocity(ch, uint8(ev.Note), uint8(ev.Value))
	case contracts.NoteOn:
		return gomidi.NoteOn(ch, uint8(ev.Note), uint8(ev.Value))
	case contracts.PolyAftertouch:
		return gomidi.PolyAfterTouch(ch, uint8(ev.Note), uint8(ev.Value))
	case contracts.ControlChange:
		return gomidi.ControlChange(ch, uint8(ev.Note), uint8(ev.Value))
	case contracts.ProgramChange:
		return gomidi.ProgramChange(ch, uint8(ev.Value))
	case contracts.Aftertouch:
		return gomidi.AfterTouch(ch, uint8(ev.Value))
	case contracts.PitchBend:
		return gomidi.Pitchbend(ch, int16(ev.Value))
	}
	return gomidi.Message{byte(ev.Value)}
}

func describe(ev contracts.Event) string {
	if ev.Command == contracts.RawByte {
		return fmt.Sprintf("RawByte 0x%02X", ev.Value)
	}
	return toMessage(ev).String()
}

func describeSystem(msg contracts.SystemMessage) string {
	switch msg.Kind {
	case contracts.SystemExclusive:
		return fmt.Sprintf("%s % X", msg.Kind, msg.Data)
	case contracts.TimeCode, contracts.SongPosition, contracts.SongSelect:
		return fmt.Sprintf("%s %d", msg.Kind, msg.Value)
	}
	return msg.Kind.String()
}
