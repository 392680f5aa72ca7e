//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midiwire/sdk/contracts"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// HMIDIIN is a winmm MIDI input handle.
type HMIDIIN windows.Handle

// Callback flags for midiInOpen.
const (
	CALLBACK_FUNCTION = 0x00030000
	MIDI_IO_STATUS    = 0x00000020
)

// Input callback messages.
const (
	MIM_OPEN      = 0x3C1
	MIM_CLOSE     = 0x3C2
	MIM_DATA      = 0x3C3
	MIM_LONGDATA  = 0x3C4
	MIM_ERROR     = 0x3C5
	MIM_LONGERROR = 0x3C6
	MIM_MOREDATA  = 0x3CC
)

// ErrNoMIDIDevices is returned when winmm reports no input devices.
var ErrNoMIDIDevices = errors.New("no MIDI devices found")

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")

	callback = windows.NewCallback(midiInCallback)
)

// HostInput reads short MIDI messages from a winmm input device.
type HostInput struct {
	logger contracts.Logger
	handle HMIDIIN
	opened bool
	mu     sync.Mutex // guards handle and opened

	recvMu   sync.Mutex // serializes delivery
	receiver contracts.RawByteReceiver
}

// NewHostInput creates a winmm input.
func NewHostInput(options *contracts.Options) (contracts.HostInput, error) {
	options.Logger.Info("winmm MIDI input created")
	return &HostInput{logger: options.Logger}, nil
}

// ListDevices lists the winmm input devices.
func (h *HostInput) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	count := uint32(r0)
	if count == 0 {
		h.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			h.logger.Warn("Failed to read MIDI device capabilities", h.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens device deviceID, closing any previously opened one.
func (h *HostInput) SelectDevice(deviceID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.closeLocked(); err != nil {
		return fmt.Errorf("close previous MIDI device: %w", err)
	}

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&h.handle)),
		uintptr(deviceID),
		callback,
		uintptr(unsafe.Pointer(h)),
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		return fmt.Errorf("open MIDI device %d: mmresult %d: %v", deviceID, r1, err)
	}
	h.opened = true
	h.logger.Info("MIDI device opened", h.logger.Field().Int("deviceID", deviceID))
	return nil
}

// Start delivers bytes from the opened device to receiver.
func (h *HostInput) Start(receiver contracts.RawByteReceiver) error {
	if receiver == nil {
		return fmt.Errorf("%w: nil receiver", contracts.ErrInvalidArgument)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.opened {
		return fmt.Errorf("%w: no MIDI device selected", contracts.ErrNotConnected)
	}

	h.recvMu.Lock()
	h.receiver = receiver
	h.recvMu.Unlock()

	if r1, _, err := procMidiInStart.Call(uintptr(h.handle)); r1 != 0 {
		return fmt.Errorf("start MIDI input: mmresult %d: %v", r1, err)
	}
	h.logger.Info("MIDI capture started")
	return nil
}

// Stop stops and closes the device.
func (h *HostInput) Stop() error {
	h.mu.Lock()
	err := h.closeLocked()
	h.mu.Unlock()

	h.recvMu.Lock()
	h.receiver = nil
	h.recvMu.Unlock()
	if err == nil {
		h.logger.Info("MIDI capture stopped")
	}
	return err
}

func (h *HostInput) closeLocked() error {
	if !h.opened {
		return nil
	}
	var err error
	if r1, _, e := procMidiInStop.Call(uintptr(h.handle)); r1 != 0 {
		err = multierr.Append(err, fmt.Errorf("midiInStop: mmresult %d: %v", r1, e))
	}
	if r1, _, e := procMidiInClose.Call(uintptr(h.handle)); r1 != 0 {
		err = multierr.Append(err, fmt.Errorf("midiInClose: mmresult %d: %v", r1, e))
	}
	h.opened = false
	h.handle = 0
	return err
}

func (h *HostInput) deliver(msg []byte) {
	h.recvMu.Lock()
	defer h.recvMu.Unlock()
	if h.receiver == nil {
		return
	}
	if err := h.receiver.OnBytesReceived(msg); err != nil {
		h.logger.Warn("MIDI receiver rejected bytes", h.logger.Field().Error("error", err))
	}
}

func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	h := (*HostInput)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_DATA, MIM_MOREDATA:
		h.deliver(shortMessage(dwParam1))
	case MIM_OPEN, MIM_CLOSE:
		h.logger.Debug("MIDI device status", h.logger.Field().Int("msg", int(wMsg)))
	case MIM_LONGDATA:
		// System exclusive needs midiInAddBuffer; no buffers are queued.
	case MIM_ERROR, MIM_LONGERROR:
		h.logger.Warn("Invalid MIDI message from driver", h.logger.Field().Int("msg", int(wMsg)))
	}
	return 0
}
