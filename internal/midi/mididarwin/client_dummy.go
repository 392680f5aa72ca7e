//go:build !darwin
// +build !darwin

package mididarwin

import "github.com/leandrodaf/midiwire/sdk/contracts"

type dummyHostInput struct {
	logger contracts.Logger
}

// NewHostInput returns an input whose operations report contracts.ErrUnsupported.
func NewHostInput(options *contracts.Options) (contracts.HostInput, error) {
	options.Logger.Debug("CoreMIDI unavailable on this platform")
	return &dummyHostInput{logger: options.Logger}, nil
}

func (d *dummyHostInput) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, contracts.ErrUnsupported
}

func (d *dummyHostInput) SelectDevice(int) error {
	return contracts.ErrUnsupported
}

func (d *dummyHostInput) Start(contracts.RawByteReceiver) error {
	d.logger.Warn("Start called on dummy host input")
	return contracts.ErrUnsupported
}

func (d *dummyHostInput) Stop() error {
	return nil
}
