//go:build !linux

package bluetooth

import (
	"context"
	"io"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// RFCOMMDialer needs kernel RFCOMM sockets; on this platform use a
// SerialDialer on the port the OS creates for a paired device.
type RFCOMMDialer struct {
	Channel uint8
}

func (d RFCOMMDialer) Dial(context.Context, string) (io.ReadWriteCloser, error) {
	return nil, contracts.ErrUnsupported
}
