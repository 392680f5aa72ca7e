package bluetooth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Address is a Bluetooth device address in display order, so
// "00:11:22:33:44:55" parses to {0x00, 0x11, ..., 0x55}.
type Address [6]byte

// ParseAddress parses a colon-separated Bluetooth device address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	parts := strings.Split(s, ":")
	if len(parts) != len(addr) {
		return addr, fmt.Errorf("%w: bluetooth address %q", contracts.ErrInvalidArgument, s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return addr, fmt.Errorf("%w: bluetooth address %q", contracts.ErrInvalidArgument, s)
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return addr, fmt.Errorf("%w: bluetooth address %q", contracts.ErrInvalidArgument, s)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}
