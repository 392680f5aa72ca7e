//go:build linux

package bluetooth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const pollInterval = 100 // milliseconds

// RFCOMMDialer connects to the SPP service of a Bluetooth device over a
// kernel RFCOMM socket. The address is the device address, e.g.
// "00:11:22:33:44:55".
type RFCOMMDialer struct {
	Channel uint8
}

func (d RFCOMMDialer) Dial(ctx context.Context, address string) (io.ReadWriteCloser, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("rfcomm socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Channel: d.Channel}
	for i := range addr {
		sa.Addr[i] = addr[len(addr)-1-i] // bdaddr_t is little-endian
	}

	if err := connectNonblock(ctx, fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm connect %s channel %d: %w", address, d.Channel, err)
	}
	return os.NewFile(uintptr(fd), "rfcomm:"+address), nil
}

func connectNonblock(ctx context.Context, fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EINPROGRESS) && !errors.Is(err, unix.EAGAIN) {
		return err
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, pollInterval)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 {
			break
		}
	}

	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soErr != 0 {
		return unix.Errno(soErr)
	}
	return nil
}
