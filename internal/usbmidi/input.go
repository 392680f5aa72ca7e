package usbmidi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// InEndpoint is a bulk IN endpoint. A read that runs out of time must return
// once ctx is done.
type InEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

// Input deframes USB-MIDI packets read from a bulk endpoint and feeds the
// payload to channel decoders. Each virtual cable can have its own receiver;
// packets on other cables go to the default receiver if they pass the cable
// filter.
type Input struct {
	ep      InEndpoint
	logger  contracts.Logger
	timeout time.Duration
	size    int

	mu       sync.Mutex
	filter   int
	fallback *wire.Decoder
	cables   [16]*wire.Decoder

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ contracts.USBInput = (*Input)(nil)

// NewInput returns an Input reading from ep.
func NewInput(ep InEndpoint, options *contracts.Options) *Input {
	size := options.USB.PacketSize - options.USB.PacketSize%PacketLen
	if size <= 0 {
		size = PacketLen
	}
	filter := options.USB.InputCable
	if filter < 0 || filter > 15 {
		filter = contracts.AnyCable
	}
	return &Input{
		ep:      ep,
		logger:  options.Logger,
		timeout: options.USB.ReadTimeout,
		size:    size,
		filter:  filter,
	}
}

// SetReceiver sets the default receiver. A nil receiver removes it.
func (in *Input) SetReceiver(r contracts.MidiReceiver) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.fallback = newDecoder(r)
}

// SetCableReceiver routes packets on cable to r regardless of the cable
// filter. A nil receiver removes the route.
func (in *Input) SetCableReceiver(cable int, r contracts.MidiReceiver) error {
	if cable < 0 || cable > 15 {
		return fmt.Errorf("%w: virtual cable %d", contracts.ErrInvalidArgument, cable)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cables[cable] = newDecoder(r)
	return nil
}

// SetVirtualCable restricts the default receiver to one cable. Any negative
// value accepts every cable.
func (in *Input) SetVirtualCable(cable int) error {
	if cable > 15 {
		return fmt.Errorf("%w: virtual cable %d", contracts.ErrInvalidArgument, cable)
	}
	if cable < 0 {
		cable = contracts.AnyCable
	}
	in.mu.Lock()
	in.filter = cable
	in.mu.Unlock()
	return nil
}

func newDecoder(r contracts.MidiReceiver) *wire.Decoder {
	if r == nil {
		return nil
	}
	return wire.NewDecoder(r)
}

// Decode processes buf in 4-byte strides. A trailing partial packet is
// ignored and reported as contracts.ErrPartialPacket after the complete
// packets have been delivered.
func (in *Input) Decode(buf []byte) error {
	n := len(buf) - len(buf)%PacketLen
	for i := 0; i < n; i += PacketLen {
		cin := buf[i] & 0x0F
		size := PayloadLength(cin)
		if size == 0 {
			continue
		}
		if dec := in.route(int(buf[i] >> 4)); dec != nil {
			_ = dec.OnBytesReceived(buf[i+1 : i+1+size])
		}
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d trailing bytes", contracts.ErrPartialPacket, len(buf)-n)
	}
	return nil
}

func (in *Input) route(cable int) *wire.Decoder {
	in.mu.Lock()
	defer in.mu.Unlock()
	if dec := in.cables[cable]; dec != nil {
		return dec
	}
	if in.filter == contracts.AnyCable || in.filter == cable {
		return in.fallback
	}
	return nil
}

func (in *Input) hasReceiver() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.fallback != nil {
		return true
	}
	for _, dec := range in.cables {
		if dec != nil {
			return true
		}
	}
	return false
}

func (in *Input) resetDecoders() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.fallback != nil {
		in.fallback.Reset()
	}
	for _, dec := range in.cables {
		if dec != nil {
			dec.Reset()
		}
	}
}

// Start launches the polling goroutine. A running input is stopped first.
func (in *Input) Start() error {
	if in.ep == nil {
		return contracts.ErrNoEndpoint
	}
	if !in.hasReceiver() {
		return fmt.Errorf("%w: no receiver set", contracts.ErrInvalidArgument)
	}

	in.runMu.Lock()
	defer in.runMu.Unlock()

	in.stopLocked()
	in.resetDecoders()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	in.cancel, in.done = cancel, done
	go in.poll(ctx, done)

	in.logger.Info("USB-MIDI input started", in.logger.Field().Int("bufferSize", in.size))
	return nil
}

// Stop interrupts the polling goroutine and waits for it to exit. It is a
// no-op on a stopped input.
func (in *Input) Stop() error {
	in.runMu.Lock()
	defer in.runMu.Unlock()
	if in.stopLocked() {
		in.logger.Info("USB-MIDI input stopped")
	}
	return nil
}

func (in *Input) stopLocked() bool {
	if in.cancel == nil {
		return false
	}
	in.cancel()
	<-in.done
	in.cancel, in.done = nil, nil
	return true
}

func (in *Input) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	buf := make([]byte, in.size)
	for ctx.Err() == nil {
		n, timedOut, err := in.read(ctx, buf)
		if n > 0 {
			if derr := in.Decode(buf[:n]); derr != nil {
				in.logger.Warn("Dropped partial USB-MIDI packet", in.logger.Field().Error("error", derr))
			}
		}
		if err == nil || timedOut {
			continue
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		in.logger.Error("USB-MIDI read failed", in.logger.Field().Error("error", err))
		return
	}
}

func (in *Input) read(ctx context.Context, buf []byte) (int, bool, error) {
	if in.timeout <= 0 {
		n, err := in.ep.ReadContext(ctx, buf)
		return n, false, err
	}
	rctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()
	n, err := in.ep.ReadContext(rctx, buf)
	timedOut := err != nil && ctx.Err() == nil && errors.Is(rctx.Err(), context.DeadlineExceeded)
	return n, timedOut, err
}
