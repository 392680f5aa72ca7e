package usbmidi

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// OutEndpoint is a bulk OUT endpoint. *gousb.OutEndpoint satisfies it.
type OutEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Output frames wire bytes into USB-MIDI packets and writes them to a bulk
// endpoint. It implements contracts.RawByteReceiver and is safe for
// concurrent use.
type Output struct {
	mu      sync.Mutex
	ep      OutEndpoint
	logger  contracts.Logger
	cable   int
	size    int
	pending []byte // packets not yet transferred
	inBlock bool
}

var _ contracts.RawByteReceiver = (*Output)(nil)

// NewOutput returns an Output writing to ep. A nil ep is allowed; writes then
// fail with contracts.ErrNoEndpoint.
func NewOutput(ep OutEndpoint, options *contracts.Options) *Output {
	size := options.USB.PacketSize - options.USB.PacketSize%PacketLen
	if size <= 0 {
		size = PacketLen
	}
	return &Output{
		ep:      ep,
		logger:  options.Logger,
		cable:   options.USB.OutputCable & 0x0F,
		size:    size,
		pending: make([]byte, 0, size),
	}
}

// SetVirtualCable sets the cable tag of subsequent packets.
func (o *Output) SetVirtualCable(cable int) error {
	if cable < 0 || cable > 15 {
		return fmt.Errorf("%w: virtual cable %d", contracts.ErrInvalidArgument, cable)
	}
	o.mu.Lock()
	o.cable = cable
	o.mu.Unlock()
	return nil
}

// OnBytesReceived packetizes buf. Outside a block the packets are written
// before returning; inside a block they are held until EndBlock.
func (o *Output) OnBytesReceived(buf []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ep == nil {
		return contracts.ErrNoEndpoint
	}
	o.pending = Packetize(o.pending, o.cable, buf)
	if o.inBlock {
		return nil
	}
	return o.flushLocked()
}

// BeginBlock starts accumulating packets. It always succeeds.
func (o *Output) BeginBlock() bool {
	o.mu.Lock()
	o.inBlock = true
	o.mu.Unlock()
	return true
}

// EndBlock leaves block mode and writes everything accumulated since
// BeginBlock.
func (o *Output) EndBlock() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.inBlock {
		return contracts.ErrNotInBlock
	}
	o.inBlock = false
	return o.flushLocked()
}

// Flush writes any accumulated packets without leaving block mode.
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked()
}

func (o *Output) flushLocked() error {
	defer func() { o.pending = o.pending[:0] }()

	if len(o.pending) == 0 {
		return nil
	}
	if o.ep == nil {
		return contracts.ErrNoEndpoint
	}
	for off := 0; off < len(o.pending); off += o.size {
		chunk := o.pending[off:min(off+o.size, len(o.pending))]
		n, err := o.ep.WriteContext(context.Background(), chunk)
		if err == nil && n < len(chunk) {
			err = io.ErrShortWrite
		}
		if err != nil {
			o.logger.Warn("USB-MIDI transfer failed",
				o.logger.Field().Int("bytes", len(chunk)),
				o.logger.Field().Int("dropped", len(o.pending)-off),
				o.logger.Field().Error("error", err))
			return fmt.Errorf("usb-midi write: %w", err)
		}
		o.logger.Debug("USB-MIDI transfer", o.logger.Field().Int("bytes", n))
	}
	return nil
}
