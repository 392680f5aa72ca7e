// Package usbmidi frames MIDI wire bytes into 4-byte USB-MIDI event packets
// and back.
package usbmidi

// PacketLen is the size of one USB-MIDI event packet.
const PacketLen = 4

// payloadLengths maps a Code Index Number to the number of valid payload
// bytes. Reserved codes 0x0 and 0x1 carry nothing and are skipped.
var payloadLengths = [16]int{
	0x0: 0, 0x1: 0,
	0x2: 2, 0x3: 3,
	0x4: 3, 0x5: 1, 0x6: 2, 0x7: 3,
	0x8: 3, 0x9: 3, 0xA: 3, 0xB: 3,
	0xC: 2, 0xD: 2, 0xE: 3,
	0xF: 1,
}

// PayloadLength returns how many of bytes 1..3 are meaningful for cin.
func PayloadLength(cin byte) int {
	return payloadLengths[cin&0x0F]
}

// Packetize appends the packets for data on cable to dst. Data is split at
// status bytes; a complete channel message becomes one packet, anything else
// is sent one byte per packet with CIN 0xF.
func Packetize(dst []byte, cable int, data []byte) []byte {
	tag := byte(cable<<4) & 0xF0
	for start := 0; start < len(data); {
		end := start + 1
		for end < len(data) && data[end]&0x80 == 0 {
			end++
		}
		chunk := data[start:end]
		if n := channelLength(chunk[0]); n > 0 && len(chunk) == n {
			var p [PacketLen]byte
			p[0] = tag | chunk[0]>>4
			copy(p[1:], chunk)
			dst = append(dst, p[:]...)
		} else {
			for _, b := range chunk {
				dst = append(dst, tag|0x0F, b, 0, 0)
			}
		}
		start = end
	}
	return dst
}

// channelLength is the wire length of a channel message with the given
// status, or 0 if b is not a channel status byte.
func channelLength(b byte) int {
	switch {
	case b < 0x80 || b >= 0xF0:
		return 0
	case b >= 0xC0 && b < 0xE0:
		return 2
	}
	return 3
}
