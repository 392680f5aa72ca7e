// Package midi is the entry point of the SDK: it builds codecs and
// transports from functional options.
package midi

import (
	"github.com/leandrodaf/midiwire/internal/bluetooth"
	"github.com/leandrodaf/midiwire/internal/codec/sysmsg"
	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/internal/usbmidi"
	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// NewDecoder returns a channel message decoder feeding receiver. Feed it wire
// bytes through OnBytesReceived; running status is honored across calls.
func NewDecoder(receiver contracts.MidiReceiver) contracts.RawByteReceiver {
	return wire.NewDecoder(receiver)
}

// NewEncoder returns a writer that encodes channel messages into sink.
func NewEncoder(sink contracts.RawByteReceiver) contracts.MidiWriter {
	return wire.NewEncoder(sink)
}

// NewSystemFilter wraps next so that system messages in its raw byte stream
// are decoded and delivered to sys instead. Put it between a decoder and the
// final receiver.
func NewSystemFilter(next contracts.MidiReceiver, sys contracts.SystemMessageReceiver) contracts.MidiReceiver {
	return sysmsg.NewFilter(next, sys)
}

// NewSystemEncoder returns a writer that encodes system messages into sink.
func NewSystemEncoder(sink contracts.RawByteReceiver) contracts.SystemMessageWriter {
	return sysmsg.NewEncoder(sink)
}

// NewSystemMessageReceiver adapts fn to contracts.SystemMessageReceiver.
func NewSystemMessageReceiver(fn func(contracts.SystemMessage)) contracts.SystemMessageReceiver {
	return sysmsg.MessageReceiver(fn)
}

// NewEventReceiver adapts fn to contracts.MidiReceiver.
//
// fn func(contracts.Event): Called for every decoded channel message and raw byte.
// opts ...contracts.Option: WithMIDIEventFilter restricts which commands reach fn.
//
// Returns:
//   - contracts.MidiReceiver: The adapter.
//   - error: An error if the options are invalid.
func NewEventReceiver(fn func(contracts.Event), opts ...contracts.Option) (contracts.MidiReceiver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return wire.NewEventReceiver(fn, options.MIDIEventFilter), nil
}

// NewBluetoothDevice creates a MIDI device reached over an RFCOMM socket to
// the SPP service of a Bluetooth device. Connect takes the device address.
//
// receiver contracts.MidiReceiver: Receives decoded incoming messages.
// observer contracts.ConnectionObserver: Receives lifecycle changes; may be nil.
// opts ...contracts.Option: Option functions; WithRFCOMMChannel selects the channel.
//
// Returns:
//   - contracts.BluetoothMIDI: A disconnected device.
//   - error: An error if the options are invalid.
func NewBluetoothDevice(receiver contracts.MidiReceiver, observer contracts.ConnectionObserver, opts ...contracts.Option) (contracts.BluetoothMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	dialer := bluetooth.RFCOMMDialer{Channel: options.Bluetooth.RFCOMMChannel}
	return bluetooth.NewMidiDevice(dialer, receiver, observer, &options), nil
}

// NewSerialDevice creates a MIDI device on a serial tty, such as a bound
// rfcomm port or a DIN-MIDI adapter. Connect takes the device path.
//
// receiver contracts.MidiReceiver: Receives decoded incoming messages.
// observer contracts.ConnectionObserver: Receives lifecycle changes; may be nil.
// opts ...contracts.Option: Option functions; WithBaudRate sets the line speed.
//
// Returns:
//   - contracts.BluetoothMIDI: A disconnected device.
//   - error: An error if the options are invalid.
func NewSerialDevice(receiver contracts.MidiReceiver, observer contracts.ConnectionObserver, opts ...contracts.Option) (contracts.BluetoothMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	dialer := bluetooth.SerialDialer{BaudRate: options.Bluetooth.BaudRate}
	return bluetooth.NewMidiDevice(dialer, receiver, observer, &options), nil
}

// NewUSBInput creates an input that polls ep and decodes USB-MIDI packets
// into receiver. Call Start to begin polling.
//
// ep contracts.USBInEndpoint: Bulk IN endpoint of a MIDI-streaming interface.
// receiver contracts.MidiReceiver: Default receiver; may be nil and set later.
// opts ...contracts.Option: WithInputCable, WithReadTimeout and WithPacketSize apply.
//
// Returns:
//   - contracts.USBInput: The input, not yet started.
//   - error: An error if the options are invalid.
func NewUSBInput(ep contracts.USBInEndpoint, receiver contracts.MidiReceiver, opts ...contracts.Option) (contracts.USBInput, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	in := usbmidi.NewInput(ep, &options)
	if receiver != nil {
		in.SetReceiver(receiver)
	}
	return in, nil
}

// NewUSBOutput creates a writer that encodes messages into USB-MIDI packets on ep.
// BeginBlock/EndBlock on the writer batch several messages into one transfer.
//
// ep contracts.USBOutEndpoint: Bulk OUT endpoint of a MIDI-streaming interface.
// opts ...contracts.Option: WithOutputCable and WithPacketSize apply.
//
// Returns:
//   - contracts.USBOutput: The writer; SetVirtualCable and Flush reach the framer.
//   - error: An error if the options are invalid.
func NewUSBOutput(ep contracts.USBOutEndpoint, opts ...contracts.Option) (contracts.USBOutput, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return usbmidi.NewWriter(usbmidi.NewOutput(ep, &options)), nil
}
