package contracts

import "context"

// ConnectionState is the lifecycle state of a byte-stream connection.
type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// ConnectionObserver is notified of connection lifecycle changes. Callbacks
// run on the transport's own goroutines.
type ConnectionObserver interface {
	OnDeviceConnected(address string)
	OnConnectionFailed(err error)
	OnConnectionLost(err error)
}

// BluetoothMIDI is a MIDI device reached over a serial byte stream.
type BluetoothMIDI interface {
	Connect(address string) error
	State() ConnectionState
	MidiOut() MidiWriter
	// Stop drops the current session without waiting for its reader.
	Stop() error
	// Close stops and waits for the reader to exit.
	Close() error
}

// USBInEndpoint is a bulk IN endpoint. ReadContext must return once ctx is
// done.
type USBInEndpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

// USBOutEndpoint is a bulk OUT endpoint.
type USBOutEndpoint interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// USBInput is a polling USB-MIDI input endpoint.
type USBInput interface {
	SetReceiver(receiver MidiReceiver)
	// SetCableReceiver routes one virtual cable to its own receiver.
	SetCableReceiver(cable int, receiver MidiReceiver) error
	SetVirtualCable(cable int) error
	Start() error
	Stop() error
}

// USBOutput is a MidiWriter bound to a USB-MIDI OUT endpoint.
type USBOutput interface {
	MidiWriter
	SetVirtualCable(cable int) error
	// Flush sends pending packets without leaving block mode.
	Flush() error
}
