//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI source handling.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI sources found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI source")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI source")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// portConnection is the handle returned by InputPort.Connect.
type portConnection interface {
	Disconnect()
}

// HostInput reads raw MIDI bytes from a CoreMIDI source.
type HostInput struct {
	logger   contracts.Logger
	client   coremidi.Client
	port     coremidi.InputPort
	portConn portConnection
	mu       sync.Mutex // guards port and portConn

	recvMu   sync.Mutex // serializes delivery
	receiver contracts.RawByteReceiver
}

// NewHostInput creates a CoreMIDI client named after options.CoreMIDIConfig.
func NewHostInput(options *contracts.Options) (contracts.HostInput, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("create CoreMIDI client: %w", err)
	}
	options.Logger.Info("CoreMIDI client created",
		options.Logger.Field().String("clientName", options.CoreMIDIConfig.ClientName))

	return &HostInput{logger: options.Logger, client: client}, nil
}

// ListDevices returns every CoreMIDI source.
func (h *HostInput) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		h.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects the input port to source deviceID, dropping any
// previous connection.
func (h *HostInput) SelectDevice(deviceID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}

	h.disconnectLocked()

	source := sources[deviceID]
	h.port, err = coremidi.NewInputPort(h.client, "Input Port", h.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}
	h.portConn, err = h.port.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	h.logger.Info("MIDI source connected",
		h.logger.Field().Int("deviceID", deviceID),
		h.logger.Field().String("deviceName", source.Name()))
	return nil
}

// Start delivers bytes from the selected source to receiver.
func (h *HostInput) Start(receiver contracts.RawByteReceiver) error {
	if receiver == nil {
		return fmt.Errorf("%w: nil receiver", contracts.ErrInvalidArgument)
	}
	h.mu.Lock()
	connected := h.portConn != nil
	h.mu.Unlock()
	if !connected {
		return fmt.Errorf("%w: no MIDI source selected", contracts.ErrNotConnected)
	}

	h.recvMu.Lock()
	h.receiver = receiver
	h.recvMu.Unlock()
	h.logger.Info("MIDI capture started")
	return nil
}

// handlePacket runs on a CoreMIDI thread.
func (h *HostInput) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	h.recvMu.Lock()
	defer h.recvMu.Unlock()

	if h.receiver == nil || len(packet.Data) == 0 {
		return
	}
	if err := h.receiver.OnBytesReceived(packet.Data); err != nil {
		h.logger.Warn("MIDI receiver rejected bytes", h.logger.Field().Error("error", err))
	}
}

// Stop disconnects the source. Once it returns no more bytes are delivered.
func (h *HostInput) Stop() error {
	h.mu.Lock()
	h.disconnectLocked()
	h.mu.Unlock()

	h.recvMu.Lock()
	h.receiver = nil
	h.recvMu.Unlock()
	h.logger.Info("MIDI capture stopped")
	return nil
}

func (h *HostInput) disconnectLocked() {
	if h.portConn != nil {
		h.portConn.Disconnect()
		h.portConn = nil
	}
}
