package midiwindows

// shortMessage unpacks a winmm short message (status in the low byte, then
// up to two data bytes) into its wire bytes.
func shortMessage(param uintptr) []byte {
	msg := []byte{byte(param), byte(param >> 8), byte(param >> 16)}
	return msg[:messageLength(msg[0])]
}

func messageLength(status byte) int {
	switch {
	case status < 0x80:
		return 1
	case status < 0xC0, status >= 0xE0 && status < 0xF0:
		return 3
	case status < 0xE0:
		return 2
	case status == 0xF1 || status == 0xF3:
		return 2
	case status == 0xF2:
		return 3
	}
	return 1
}
