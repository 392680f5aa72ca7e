package bluetooth

import (
	"errors"
	"sync"

	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"go.uber.org/multierr"
)

// MidiDevice is a MIDI device behind a Connection. Incoming bytes are decoded
// into receiver callbacks; outgoing messages are encoded onto the stream.
type MidiDevice struct {
	conn     *Connection
	observer contracts.ConnectionObserver

	decMu   sync.Mutex
	decoder *wire.Decoder

	out     *blockWriter
	encoder *wire.Encoder
}

var _ contracts.BluetoothMIDI = (*MidiDevice)(nil)

// NewMidiDevice returns a disconnected device. Decoded messages go to
// receiver and lifecycle changes to observer, which may be nil.
func NewMidiDevice(dialer Dialer, receiver contracts.MidiReceiver, observer contracts.ConnectionObserver, options *contracts.Options) *MidiDevice {
	if observer == nil {
		observer = nopObserver{}
	}
	d := &MidiDevice{
		observer: observer,
		decoder:  wire.NewDecoder(receiver),
	}
	d.conn = NewConnection(dialer, d, d, options)
	d.out = &blockWriter{conn: d.conn}
	d.encoder = wire.NewEncoder(d.out)
	return d
}

// Connect starts connecting to address. See Connection.Connect.
func (d *MidiDevice) Connect(address string) error {
	return d.conn.Connect(address)
}

// State returns the connection state.
func (d *MidiDevice) State() contracts.ConnectionState {
	return d.conn.State()
}

// MidiOut returns the writer for outgoing messages. Writes fail with
// contracts.ErrNotConnected while disconnected.
func (d *MidiDevice) MidiOut() contracts.MidiWriter {
	return d.encoder
}

// Stop disconnects without waiting for background goroutines.
func (d *MidiDevice) Stop() error {
	return d.conn.Stop()
}

// Close sends any bytes held by an open block, then closes the connection.
func (d *MidiDevice) Close() error {
	return multierr.Append(d.out.flushOpenBlock(), d.conn.Close())
}

func (d *MidiDevice) OnBytesReceived(buf []byte) error {
	d.decMu.Lock()
	defer d.decMu.Unlock()
	return d.decoder.OnBytesReceived(buf)
}

func (d *MidiDevice) BeginBlock() bool { return false }

func (d *MidiDevice) EndBlock() error { return nil }

// OnDeviceConnected starts every session with a fresh decoder.
func (d *MidiDevice) OnDeviceConnected(address string) {
	d.decMu.Lock()
	d.decoder.Reset()
	d.decMu.Unlock()
	d.observer.OnDeviceConnected(address)
}

func (d *MidiDevice) OnConnectionFailed(err error) { d.observer.OnConnectionFailed(err) }

func (d *MidiDevice) OnConnectionLost(err error) { d.observer.OnConnectionLost(err) }

// blockWriter writes straight to the connection, or collects bytes between
// BeginBlock and EndBlock and writes them at once.
type blockWriter struct {
	conn *Connection

	mu      sync.Mutex
	inBlock bool
	buf     []byte
}

func (w *blockWriter) OnBytesReceived(buf []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inBlock {
		w.buf = append(w.buf, buf...)
		return nil
	}
	return w.conn.Write(buf)
}

func (w *blockWriter) BeginBlock() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inBlock = true
	return true
}

func (w *blockWriter) EndBlock() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.inBlock {
		return contracts.ErrNotInBlock
	}
	return w.flushLocked()
}

// flushOpenBlock ends an open block, writing what it holds if still
// connected.
func (w *blockWriter) flushOpenBlock() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.inBlock {
		return nil
	}
	if err := w.flushLocked(); !errors.Is(err, contracts.ErrNotConnected) {
		return err
	}
	return nil
}

func (w *blockWriter) flushLocked() error {
	w.inBlock = false
	if len(w.buf) == 0 {
		return nil
	}
	err := w.conn.Write(w.buf)
	w.buf = w.buf[:0]
	return err
}
