package bluetooth

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// SerialDialer opens a serial tty, such as a bound /dev/rfcommN or a DIN-MIDI
// serial adapter. The address is the device path.
type SerialDialer struct {
	BaudRate int
}

func (d SerialDialer) Dial(ctx context.Context, address string) (io.ReadWriteCloser, error) {
	type result struct {
		port serial.Port
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		port, err := serial.Open(address, &serial.Mode{BaudRate: d.BaudRate})
		ch <- result{port, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", address, r.err)
		}
		return r.port, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.err == nil {
				_ = r.port.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// SerialPorts lists the serial ports present on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
