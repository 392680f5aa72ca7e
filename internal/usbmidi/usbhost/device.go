// Package usbhost opens USB-MIDI class devices through libusb and exposes
// their bulk endpoints as usbmidi inputs and outputs.
package usbhost

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
	"github.com/leandrodaf/midiwire/internal/usbmidi"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrDeviceNotFound is returned when no device matches the requested IDs.
var ErrDeviceNotFound = errors.New("USB device not found")

const (
	subclassMIDIStreaming gousb.Class = 0x03
	midiPacketSize                    = 64
)

// Device is an opened USB device with every MIDI-streaming interface claimed.
type Device struct {
	logger  contracts.Logger
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intfs   []*gousb.Interface
	inputs  []*usbmidi.Input
	outputs []*usbmidi.Output
}

// Open opens the first device with the given vendor and product IDs.
func Open(vid, pid uint16, options *contracts.Options) (*Device, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open %04x:%04x: %w", vid, pid, err), ctx.Close())
	}
	if dev == nil {
		return nil, multierr.Append(fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vid, pid), ctx.Close())
	}

	d := &Device{logger: options.Logger, ctx: ctx, dev: dev}
	if err := d.claim(options); err != nil {
		return nil, multierr.Append(err, d.Close())
	}

	d.logger.Info("USB-MIDI device opened",
		d.logger.Field().String("device", fmt.Sprintf("%04x:%04x", vid, pid)),
		d.logger.Field().Int("inputs", len(d.inputs)),
		d.logger.Field().Int("outputs", len(d.outputs)))
	return d, nil
}

func (d *Device) claim(options *contracts.Options) error {
	if err := d.dev.SetAutoDetach(true); err != nil {
		d.logger.Warn("Kernel driver auto-detach unavailable", d.logger.Field().Error("error", err))
	}
	num, err := d.dev.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("active config: %w", err)
	}
	d.cfg, err = d.dev.Config(num)
	if err != nil {
		return fmt.Errorf("claim config %d: %w", num, err)
	}

	for _, desc := range d.cfg.Desc.Interfaces {
		if len(desc.AltSettings) == 0 {
			continue
		}
		alt := desc.AltSettings[0]
		if alt.Class != gousb.ClassAudio || alt.SubClass != subclassMIDIStreaming {
			continue
		}
		intf, err := d.cfg.Interface(alt.Number, alt.Alternate)
		if err != nil {
			return fmt.Errorf("claim interface %d: %w", alt.Number, err)
		}
		d.intfs = append(d.intfs, intf)

		for _, ep := range alt.Endpoints {
			if ep.TransferType != gousb.TransferTypeBulk || ep.MaxPacketSize != midiPacketSize {
				continue
			}
			if ep.Direction == gousb.EndpointDirectionIn {
				in, err := intf.InEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("in endpoint %s: %w", ep.Address, err)
				}
				d.inputs = append(d.inputs, usbmidi.NewInput(inEndpoint{in}, options))
			} else {
				out, err := intf.OutEndpoint(ep.Number)
				if err != nil {
					return fmt.Errorf("out endpoint %s: %w", ep.Address, err)
				}
				d.outputs = append(d.outputs, usbmidi.NewOutput(out, options))
			}
		}
	}
	if len(d.intfs) == 0 {
		return fmt.Errorf("%w: no MIDI-streaming interface", contracts.ErrUnsupported)
	}
	return nil
}

// Inputs returns one Input per bulk IN endpoint.
func (d *Device) Inputs() []*usbmidi.Input { return d.inputs }

// Outputs returns one Output per bulk OUT endpoint.
func (d *Device) Outputs() []*usbmidi.Output { return d.outputs }

// Close stops all inputs, then releases interfaces and the device.
func (d *Device) Close() error {
	var err error
	for _, in := range d.inputs {
		err = multierr.Append(err, in.Stop())
	}
	for _, intf := range d.intfs {
		intf.Close()
	}
	if d.cfg != nil {
		err = multierr.Append(err, d.cfg.Close())
	}
	err = multierr.Append(err, d.dev.Close())
	err = multierr.Append(err, d.ctx.Close())
	d.logger.Info("USB-MIDI device closed")
	return err
}

var (
	_ usbmidi.InEndpoint  = inEndpoint{}
	_ usbmidi.OutEndpoint = (*gousb.OutEndpoint)(nil)
)

// inEndpoint reports a canceled transfer as the context error so the input
// poller can tell a read timeout from a device failure.
type inEndpoint struct {
	ep *gousb.InEndpoint
}

func (e inEndpoint) ReadContext(ctx context.Context, buf []byte) (int, error) {
	n, err := e.ep.ReadContext(ctx, buf)
	if err != nil && ctx.Err() != nil {
		return n, ctx.Err()
	}
	return n, err
}
