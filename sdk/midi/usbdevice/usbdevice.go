// Package usbdevice opens USB-MIDI class devices through libusb. It needs
// cgo and the libusb-1.0 headers, so it is kept apart from package midi.
package usbdevice

import (
	"github.com/leandrodaf/midiwire/internal/usbmidi"
	"github.com/leandrodaf/midiwire/internal/usbmidi/usbhost"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/leandrodaf/midiwire/sdk/midi"
)

// Device is a USB-MIDI class device with its MIDI-streaming interfaces
// claimed.
type Device struct {
	dev *usbhost.Device
}

// Open opens the first device with the given vendor and product IDs and
// claims its MIDI-streaming interfaces.
//
// vid, pid uint16: USB vendor and product IDs.
// opts ...contracts.Option: USB framing and logging options applied to every endpoint.
//
// Returns:
//   - *Device: The opened device; Close releases it.
//   - error: An error if the device is missing or has no MIDI-streaming interface.
func Open(vid, pid uint16, opts ...contracts.Option) (*Device, error) {
	options, err := midi.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}
	dev, err := usbhost.Open(vid, pid, &options)
	if err != nil {
		return nil, err
	}
	return &Device{dev: dev}, nil
}

// Inputs returns one input per bulk IN endpoint.
func (d *Device) Inputs() []contracts.USBInput {
	return inputs(d.dev.Inputs())
}

// Outputs returns one writer per bulk OUT endpoint.
func (d *Device) Outputs() []contracts.USBOutput {
	return outputs(d.dev.Outputs())
}

// Close stops all inputs and releases the device.
func (d *Device) Close() error {
	return d.dev.Close()
}

func inputs(list []*usbmidi.Input) []contracts.USBInput {
	res := make([]contracts.USBInput, 0, len(list))
	for _, in := range list {
		res = append(res, in)
	}
	return res
}

func outputs(list []*usbmidi.Output) []contracts.USBOutput {
	res := make([]contracts.USBOutput, 0, len(list))
	for _, out := range list {
		res = append(res, usbmidi.NewWriter(out))
	}
	return res
}
