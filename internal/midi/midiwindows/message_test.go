package midiwindows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortMessage(t *testing.T) {
	tests := []struct {
		name  string
		param uintptr
		want  []byte
	}{
		{"note on", 0x00643C90, []byte{0x90, 0x3C, 0x64}},
		{"control change", 0x007F07B3, []byte{0xB3, 0x07, 0x7F}},
		{"program change", 0x000005C2, []byte{0xC2, 0x05}},
		{"channel pressure", 0x000040D0, []byte{0xD0, 0x40}},
		{"pitch bend", 0x004000E1, []byte{0xE1, 0x00, 0x40}},
		{"time code", 0x000021F1, []byte{0xF1, 0x21}},
		{"song position", 0x000100F2, []byte{0xF2, 0x00, 0x01}},
		{"song select", 0x000003F3, []byte{0xF3, 0x03}},
		{"tune request", 0x000000F6, []byte{0xF6}},
		{"clock", 0x000000F8, []byte{0xF8}},
		{"running status data", 0x0000003C, []byte{0x3C}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortMessage(tt.param))
		})
	}
}
