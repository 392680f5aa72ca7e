package midi

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midiwire/internal/logger"
	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// Defaults applied before any Option runs.
const (
	DefaultReadTimeout    = 100 * time.Millisecond
	DefaultPacketSize     = 64
	DefaultReadBufferSize = 64
	DefaultRFCOMMChannel  = 1
	DefaultBaudRate       = 31250
	DefaultClientName     = "GO MIDI Client"
)

// ResolveOptions applies the defaults and opts and validates the result. It
// lets transport packages outside this one share the SDK defaults.
func ResolveOptions(opts ...contracts.Option) (contracts.Options, error) {
	return applyDefaultOptions(opts...)
}

// applyDefaultOptions builds Options from defaults and the given option functions.
//
// opts ...contracts.Option: A variadic list of option functions that can modify Options.
//
// Returns:
//   - contracts.Options: The finalized options. Logger is never nil.
//   - error: ErrInvalidArgument if a USB setting is out of range.
func applyDefaultOptions(opts ...contracts.Option) (contracts.Options, error) {
	options := &contracts.Options{
		USB: contracts.USBConfig{
			InputCable:  contracts.AnyCable,
			OutputCable: 0,
			ReadTimeout: DefaultReadTimeout,
			PacketSize:  DefaultPacketSize,
		},
		Bluetooth: contracts.BluetoothConfig{
			ReadBufferSize: DefaultReadBufferSize,
			RFCOMMChannel:  DefaultRFCOMMChannel,
			BaudRate:       DefaultBaudRate,
		},
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.USB.OutputCable < 0 || options.USB.OutputCable > 15 {
		return contracts.Options{}, fmt.Errorf("%w: output cable %d", contracts.ErrInvalidArgument, options.USB.OutputCable)
	}
	if options.USB.InputCable < contracts.AnyCable || options.USB.InputCable > 15 {
		return contracts.Options{}, fmt.Errorf("%w: input cable %d", contracts.ErrInvalidArgument, options.USB.InputCable)
	}
	if options.USB.PacketSize <= 0 || options.USB.PacketSize%4 != 0 {
		return contracts.Options{}, fmt.Errorf("%w: packet size %d is not a positive multiple of 4", contracts.ErrInvalidArgument, options.USB.PacketSize)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: DefaultClientName}
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
