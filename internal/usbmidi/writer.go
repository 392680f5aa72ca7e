package usbmidi

import (
	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Writer encodes channel messages onto an Output and exposes its cable and
// flush controls.
type Writer struct {
	*wire.Encoder
	out *Output
}

var _ contracts.USBOutput = (*Writer)(nil)

// NewWriter returns a Writer on out.
func NewWriter(out *Output) *Writer {
	return &Writer{Encoder: wire.NewEncoder(out), out: out}
}

func (w *Writer) SetVirtualCable(cable int) error { return w.out.SetVirtualCable(cable) }

func (w *Writer) Flush() error { return w.out.Flush() }
