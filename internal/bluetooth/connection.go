// Package bluetooth carries MIDI over a serial byte stream such as a
// Bluetooth SPP link.
package bluetooth

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Dialer opens a byte stream to address. Dial must return once ctx is done.
// Closing the returned stream must unblock a pending Read.
type Dialer interface {
	Dial(ctx context.Context, address string) (io.ReadWriteCloser, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, address string) (io.ReadWriteCloser, error)

func (f DialerFunc) Dial(ctx context.Context, address string) (io.ReadWriteCloser, error) {
	return f(ctx, address)
}

// session is one established stream. Writes are serialized; the reader runs
// concurrently with them.
type session struct {
	conn      io.ReadWriteCloser
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (s *session) close() error {
	s.closeOnce.Do(func() { s.closeErr = s.conn.Close() })
	return s.closeErr
}

// Connection manages the Disconnected, Connecting, Connected lifecycle of a
// byte stream. Incoming bytes go to the receiver from the reader goroutine;
// lifecycle changes go to the observer from the connector or reader
// goroutine.
type Connection struct {
	dialer   Dialer
	receiver contracts.RawByteReceiver
	observer contracts.ConnectionObserver
	logger   contracts.Logger
	bufSize  int

	mu      sync.Mutex
	state   contracts.ConnectionState
	gen     uint64 // bumped whenever in-flight work is superseded
	cancel  context.CancelFunc
	session *session
	closed  bool
	wg      sync.WaitGroup
}

// NewConnection returns a disconnected Connection. A nil observer is allowed.
func NewConnection(dialer Dialer, receiver contracts.RawByteReceiver, observer contracts.ConnectionObserver, options *contracts.Options) *Connection {
	if observer == nil {
		observer = nopObserver{}
	}
	size := options.Bluetooth.ReadBufferSize
	if size <= 0 {
		size = 64
	}
	return &Connection{
		dialer:   dialer,
		receiver: receiver,
		observer: observer,
		logger:   options.Logger,
		bufSize:  size,
	}
}

// State returns the current connection state.
func (c *Connection) State() contracts.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect tears down any previous attempt or session and starts dialing
// address in the background. The outcome is reported to the observer.
func (c *Connection) Connect(address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return contracts.ErrClosed
	}
	if err := c.stopLocked(); err != nil {
		c.logger.Warn("Error closing previous stream", c.logger.Field().Error("error", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = contracts.Connecting
	gen := c.gen

	c.wg.Add(1)
	go c.connect(ctx, gen, address)

	c.logger.Info("Connecting", c.logger.Field().String("address", address))
	return nil
}

func (c *Connection) connect(ctx context.Context, gen uint64, address string) {
	defer c.wg.Done()

	conn, err := c.dialer.Dial(ctx, address)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.state = contracts.Disconnected
		c.cancel()
		c.cancel = nil
		c.mu.Unlock()

		c.logger.Warn("Connection failed",
			c.logger.Field().String("address", address),
			c.logger.Field().Error("error", err))
		c.observer.OnConnectionFailed(err)
		return
	}

	s := &session{conn: conn}
	c.session = s
	c.state = contracts.Connected
	c.mu.Unlock()

	c.logger.Info("Connected", c.logger.Field().String("address", address))

	// A Stop or Connect since the unlock has already closed s.
	c.mu.Lock()
	if c.gen != gen || c.session != s {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.observer.OnDeviceConnected(address)
	go c.read(s)
}

// read runs until the stream fails or is closed by Stop. Only a failure of
// the current session is reported as lost.
func (c *Connection) read(s *session) {
	defer c.wg.Done()

	buf := make([]byte, c.bufSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			if rerr := c.receiver.OnBytesReceived(buf[:n]); rerr != nil {
				c.logger.Warn("Receiver rejected bytes", c.logger.Field().Error("error", rerr))
			}
		}
		if err != nil {
			c.lost(s, err)
			return
		}
	}
}

func (c *Connection) lost(s *session, err error) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.state = contracts.Disconnected
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	_ = s.close()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	c.logger.Warn("Connection lost", c.logger.Field().Error("error", err))
	c.observer.OnConnectionLost(err)
}

// Write sends buf on the current session. It fails with
// contracts.ErrNotConnected unless the state is Connected.
func (c *Connection) Write(buf []byte) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return contracts.ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.conn.Write(buf); err != nil {
		return fmt.Errorf("bluetooth write: %w", err)
	}
	return nil
}

// Stop cancels any connect attempt, closes the stream, and returns to
// Disconnected. It does not wait for background goroutines, so it may be
// called from observer and receiver callbacks.
func (c *Connection) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Connection) stopLocked() error {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var err error
	if c.session != nil {
		err = c.session.close()
		c.session = nil
		c.logger.Info("Disconnected")
	}
	c.state = contracts.Disconnected
	return err
}

// Close stops the connection and waits for its goroutines to exit. Further
// Connect calls fail with contracts.ErrClosed. It must not be called from a
// callback.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.closed = true
	err := c.stopLocked()
	c.mu.Unlock()

	c.wg.Wait()
	return err
}

type nopObserver struct{}

func (nopObserver) OnDeviceConnected(string) {}
func (nopObserver) OnConnectionFailed(error) {}
func (nopObserver) OnConnectionLost(error)   {}
