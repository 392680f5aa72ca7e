package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midiwire/internal/midi/mididarwin"
	"github.com/leandrodaf/midiwire/internal/midi/midiwindows"
	"github.com/leandrodaf/midiwire/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no host MIDI input.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// hostInitializers maps OS names to host input constructors.
var hostInitializers = map[string]func(*contracts.Options) (contracts.HostInput, error){
	"darwin":  mididarwin.NewHostInput,  // CoreMIDI
	"windows": midiwindows.NewHostInput, // winmm
}

// NewHostInput opens the operating system's MIDI input service. It supports
// macOS (CoreMIDI) and Windows (winmm), returning ErrUnsupportedOS elsewhere.
//
// opts ...contracts.Option: Option functions customizing logging and the CoreMIDI client name.
//
// Returns:
//   - contracts.HostInput: A host input; bytes are delivered raw to the receiver passed to Start.
//   - error: An error if the OS is unsupported or initialization fails.
func NewHostInput(opts ...contracts.Option) (contracts.HostInput, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newHostInput(runtime.GOOS, &options)
}

func newHostInput(goos string, options *contracts.Options) (contracts.HostInput, error) {
	if initializer, exists := hostInitializers[goos]; exists {
		return initializer(options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}
