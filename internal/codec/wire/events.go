package wire

import "github.com/leandrodaf/midiwire/sdk/contracts"

// EventReceiver adapts a callback to contracts.MidiReceiver, delivering every
// decoded message as a contracts.Event. Block hints are accepted and ignored.
type EventReceiver struct {
	fn     func(contracts.Event)
	filter *contracts.MIDIEventFilter
}

// NewEventReceiver returns an EventReceiver calling fn for each event that
// passes filter. A nil filter passes everything.
func NewEventReceiver(fn func(contracts.Event), filter *contracts.MIDIEventFilter) *EventReceiver {
	return &EventReceiver{fn: fn, filter: filter}
}

func (r *EventReceiver) emit(ev contracts.Event) {
	if r.filter.Allows(ev.Command) {
		r.fn(ev)
	}
}

func (r *EventReceiver) OnNoteOff(ch, note, vel int) {
	r.emit(contracts.Event{Command: contracts.NoteOff, Channel: ch, Note: note, Value: vel})
}

func (r *EventReceiver) OnNoteOn(ch, note, vel int) {
	r.emit(contracts.Event{Command: contracts.NoteOn, Channel: ch, Note: note, Value: vel})
}

func (r *EventReceiver) OnPolyAftertouch(ch, note, vel int) {
	r.emit(contracts.Event{Command: contracts.PolyAftertouch, Channel: ch, Note: note, Value: vel})
}

func (r *EventReceiver) OnControlChange(ch, ctl, val int) {
	r.emit(contracts.Event{Command: contracts.ControlChange, Channel: ch, Note: ctl, Value: val})
}

func (r *EventReceiver) OnProgramChange(ch, pgm int) {
	r.emit(contracts.Event{Command: contracts.ProgramChange, Channel: ch, Value: pgm})
}

func (r *EventReceiver) OnAftertouch(ch, vel int) {
	r.emit(contracts.Event{Command: contracts.Aftertouch, Channel: ch, Value: vel})
}

func (r *EventReceiver) OnPitchBend(ch, val int) {
	r.emit(contracts.Event{Command: contracts.PitchBend, Channel: ch, Value: val})
}

func (r *EventReceiver) OnRawByte(b byte) {
	r.emit(contracts.Event{Command: contracts.RawByte, Value: int(b)})
}

func (r *EventReceiver) BeginBlock() bool { return false }

func (r *EventReceiver) EndBlock() {}
