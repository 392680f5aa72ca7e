package bluetooth

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/internal/logger"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wait = time.Second

func testOptions() *contracts.Options {
	return &contracts.Options{
		Logger:    logger.NewNopLogger(),
		Bluetooth: contracts.BluetoothConfig{ReadBufferSize: 64},
	}
}

type observer struct {
	connected chan string
	failed    chan error
	lost      chan error
}

func newObserver() *observer {
	return &observer{
		connected: make(chan string, 4),
		failed:    make(chan error, 4),
		lost:      make(chan error, 4),
	}
}

func (o *observer) OnDeviceConnected(address string) { o.connected <- address }
func (o *observer) OnConnectionFailed(err error)     { o.failed <- err }
func (o *observer) OnConnectionLost(err error)       { o.lost <- err }

type byteRecorder struct {
	ch chan []byte
}

func newByteRecorder() *byteRecorder { return &byteRecorder{ch: make(chan []byte, 16)} }

func (r *byteRecorder) OnBytesReceived(buf []byte) error {
	r.ch <- append([]byte(nil), buf...)
	return nil
}
func (r *byteRecorder) BeginBlock() bool { return false }
func (r *byteRecorder) EndBlock() error  { return nil }

// pipeDialer hands the local end of a net.Pipe to the connection and the
// remote end to the test.
type pipeDialer struct {
	peers chan net.Conn
}

func newPipeDialer() *pipeDialer { return &pipeDialer{peers: make(chan net.Conn, 4)} }

func (d *pipeDialer) Dial(_ context.Context, _ string) (io.ReadWriteCloser, error) {
	local, remote := net.Pipe()
	d.peers <- remote
	return local, nil
}

func (d *pipeDialer) peer(t *testing.T) net.Conn {
	t.Helper()
	select {
	case p := <-d.peers:
		t.Cleanup(func() { _ = p.Close() })
		return p
	case <-time.After(wait):
		t.Fatal("no dial")
		return nil
	}
}

func expectConnected(t *testing.T, o *observer) string {
	t.Helper()
	select {
	case addr := <-o.connected:
		return addr
	case <-time.After(wait):
		t.Fatal("not connected")
		return ""
	}
}

func expectNone[T any](t *testing.T, ch chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConnection_ReceiveAndWrite(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	rec := newByteRecorder()
	c := NewConnection(dialer, rec, obs, testOptions())
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Connect("00:11:22:33:44:55"))
	peer := dialer.peer(t)
	assert.Equal(t, "00:11:22:33:44:55", expectConnected(t, obs))
	assert.Equal(t, contracts.Connected, c.State())

	_, err := peer.Write([]byte{0x90, 0x3C, 0x7F})
	require.NoError(t, err)
	select {
	case got := <-rec.ch:
		assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, got)
	case <-time.After(wait):
		t.Fatal("bytes not received")
	}

	read := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 8)
		n, _ := peer.Read(buf)
		read <- buf[:n]
	}()
	require.NoError(t, c.Write([]byte{0xF8}))
	assert.Equal(t, []byte{0xF8}, <-read)
}

func TestConnection_WriteWhileDisconnected(t *testing.T) {
	c := NewConnection(newPipeDialer(), newByteRecorder(), nil, testOptions())
	assert.Equal(t, contracts.Disconnected, c.State())
	assert.ErrorIs(t, c.Write([]byte{0xF8}), contracts.ErrNotConnected)
}

func TestConnection_ConnectFailed(t *testing.T) {
	boom := errors.New("host is down")
	obs := newObserver()
	dialer := DialerFunc(func(context.Context, string) (io.ReadWriteCloser, error) { return nil, boom })
	c := NewConnection(dialer, newByteRecorder(), obs, testOptions())

	require.NoError(t, c.Connect("00:11:22:33:44:55"))
	select {
	case err := <-obs.failed:
		assert.ErrorIs(t, err, boom)
	case <-time.After(wait):
		t.Fatal("failure not reported")
	}
	assert.Equal(t, contracts.Disconnected, c.State())
	require.NoError(t, c.Close())
}

func TestConnection_LostOnce(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	c := NewConnection(dialer, newByteRecorder(), obs, testOptions())

	require.NoError(t, c.Connect("dev"))
	peer := dialer.peer(t)
	expectConnected(t, obs)

	require.NoError(t, peer.Close())
	select {
	case err := <-obs.lost:
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	case <-time.After(wait):
		t.Fatal("loss not reported")
	}
	assert.Equal(t, contracts.Disconnected, c.State())
	assert.ErrorIs(t, c.Write([]byte{0xF8}), contracts.ErrNotConnected)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Close())
	expectNone(t, obs.lost, "second loss")
}

func TestConnection_StopIsSilentAndIdempotent(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	c := NewConnection(dialer, newByteRecorder(), obs, testOptions())

	require.NoError(t, c.Stop())
	require.NoError(t, c.Connect("dev"))
	dialer.peer(t)
	expectConnected(t, obs)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	assert.Equal(t, contracts.Disconnected, c.State())
	require.NoError(t, c.Close())
	expectNone(t, obs.lost, "loss after stop")
}

// stopOnConnected stops the connection as soon as it logs "Connected", i.e.
// after the session is installed and before the observer is told.
type stopOnConnected struct {
	contracts.Logger
	conn *Connection
}

func (l *stopOnConnected) Info(msg string, fields ...contracts.Field) {
	if msg == "Connected" {
		_ = l.conn.Stop()
	}
	l.Logger.Info(msg, fields...)
}

func TestConnection_StopBeforeConnectedNotice(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	log := &stopOnConnected{Logger: logger.NewNopLogger()}
	opts := testOptions()
	opts.Logger = log
	c := NewConnection(dialer, newByteRecorder(), obs, opts)
	log.conn = c

	require.NoError(t, c.Connect("dev"))
	dialer.peer(t)

	expectNone(t, obs.connected, "connected notice after stop")
	assert.Equal(t, contracts.Disconnected, c.State())
	require.ErrorIs(t, c.Write([]byte{0xF8}), contracts.ErrNotConnected)
	require.NoError(t, c.Close())
	expectNone(t, obs.lost, "loss after stop")
}

func TestConnection_ReconnectSupersedesPendingDial(t *testing.T) {
	var calls atomic.Int32
	peers := make(chan net.Conn, 1)
	dialer := DialerFunc(func(ctx context.Context, _ string) (io.ReadWriteCloser, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		local, remote := net.Pipe()
		peers <- remote
		return local, nil
	})
	obs := newObserver()
	c := NewConnection(dialer, newByteRecorder(), obs, testOptions())
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Connect("first"))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, wait, time.Millisecond)
	assert.Equal(t, contracts.Connecting, c.State())

	require.NoError(t, c.Connect("second"))
	assert.Equal(t, "second", expectConnected(t, obs))
	defer func() { _ = (<-peers).Close() }()

	expectNone(t, obs.failed, "failure of superseded dial")
	expectNone(t, obs.connected, "second connected notification")
	assert.Equal(t, contracts.Connected, c.State())
}

func TestConnection_ReconnectReplacesSession(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	c := NewConnection(dialer, newByteRecorder(), obs, testOptions())
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Connect("a"))
	dialer.peer(t)
	expectConnected(t, obs)

	require.NoError(t, c.Connect("b"))
	dialer.peer(t)
	assert.Equal(t, "b", expectConnected(t, obs))
	expectNone(t, obs.lost, "loss of replaced session")
}

func TestConnection_CloseRejectsConnect(t *testing.T) {
	c := NewConnection(newPipeDialer(), newByteRecorder(), nil, testOptions())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect("dev"), contracts.ErrClosed)
	require.NoError(t, c.Close())
}

type eventLog struct {
	mu     sync.Mutex
	events []contracts.Event
}

func (l *eventLog) add(ev contracts.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestMidiDevice(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	log := &eventLog{}
	d := NewMidiDevice(dialer, wire.NewEventReceiver(log.add, nil), obs, testOptions())
	t.Cleanup(func() { _ = d.Close() })

	assert.ErrorIs(t, d.MidiOut().NoteOn(0, 60, 100), contracts.ErrNotConnected)

	require.NoError(t, d.Connect("dev"))
	peer := dialer.peer(t)
	expectConnected(t, obs)
	assert.Equal(t, contracts.Connected, d.State())

	// Inbound running status.
	_, err := peer.Write([]byte{0x91, 0x3C, 0x40, 0x3E, 0x40})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return log.len() == 2 }, wait, time.Millisecond)

	reads := make(chan []byte, 4)
	go func() {
		for {
			buf := make([]byte, 64)
			n, err := peer.Read(buf)
			if err != nil {
				return
			}
			reads <- buf[:n]
		}
	}()

	out := d.MidiOut()
	require.NoError(t, out.ControlChange(2, 7, 100))
	assert.Equal(t, []byte{0xB2, 0x07, 0x64}, <-reads)

	require.True(t, out.BeginBlock())
	require.NoError(t, out.NoteOn(0, 60, 100))
	require.NoError(t, out.NoteOn(0, 64, 100))
	require.NoError(t, out.EndBlock())
	assert.Equal(t, []byte{0x90, 0x3C, 0x64, 0x90, 0x40, 0x64}, <-reads)

	assert.ErrorIs(t, out.EndBlock(), contracts.ErrNotInBlock)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("00:1a:7D:DA:71:13")
	require.NoError(t, err)
	assert.Equal(t, Address{0x00, 0x1A, 0x7D, 0xDA, 0x71, 0x13}, addr)
	assert.Equal(t, "00:1A:7D:DA:71:13", addr.String())

	for _, bad := range []string{"", "00:11:22:33:44", "00:11:22:33:44:55:66", "0:11:22:33:44:55", "zz:11:22:33:44:55"} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, contracts.ErrInvalidArgument, bad)
	}
}

func TestMidiDevice_StopThroughInterface(t *testing.T) {
	dialer := newPipeDialer()
	obs := newObserver()
	var dev contracts.BluetoothMIDI = NewMidiDevice(dialer, wire.NewEventReceiver(func(contracts.Event) {}, nil), obs, testOptions())
	t.Cleanup(func() { _ = dev.Close() })

	require.NoError(t, dev.Connect("dev"))
	dialer.peer(t)
	expectConnected(t, obs)

	require.NoError(t, dev.Stop())
	assert.Equal(t, contracts.Disconnected, dev.State())
	assert.ErrorIs(t, dev.MidiOut().NoteOn(0, 60, 100), contracts.ErrNotConnected)
	expectNone(t, obs.lost, "loss after stop")

	require.NoError(t, dev.Connect("dev"))
	dialer.peer(t)
	expectConnected(t, obs)
}
