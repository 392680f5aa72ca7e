package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a caller bug, e.g. an out-of-range value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotConnected is returned when writing to a transport that is not connected.
	ErrNotConnected = errors.New("not connected")
	// ErrNoEndpoint is returned when a framer has no bound endpoint. It
	// matches ErrInvalidArgument under errors.Is.
	ErrNoEndpoint = fmt.Errorf("%w: no endpoint bound", ErrInvalidArgument)
	// ErrNotInBlock is returned by EndBlock without a matching BeginBlock.
	ErrNotInBlock = errors.New("not in block mode")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport closed")
	// ErrPartialPacket reports a transfer whose length is not a multiple of 4.
	ErrPartialPacket = errors.New("partial USB-MIDI packet")
	// ErrUnsupported reports functionality not available on this platform.
	ErrUnsupported = errors.New("not supported on this platform")
)
