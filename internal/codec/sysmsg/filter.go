package sysmsg

import "github.com/leandrodaf/midiwire/sdk/contracts"

// Filter sits in front of a MidiReceiver and offers every raw byte to a
// system message Decoder first. Only bytes the decoder does not claim reach
// the next receiver's OnRawByte; channel events pass straight through.
type Filter struct {
	contracts.MidiReceiver
	decoder *Decoder
}

// NewFilter returns a Filter forwarding channel events and unclaimed bytes to
// next and system messages to sys.
func NewFilter(next contracts.MidiReceiver, sys contracts.SystemMessageReceiver) *Filter {
	return &Filter{MidiReceiver: next, decoder: NewDecoder(sys)}
}

func (f *Filter) OnRawByte(b byte) {
	if !f.decoder.DecodeByte(b) {
		f.MidiReceiver.OnRawByte(b)
	}
}
