package usbdevice

import (
	"context"
	"testing"

	"github.com/leandrodaf/midiwire/internal/logger"
	"github.com/leandrodaf/midiwire/internal/usbmidi"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/leandrodaf/midiwire/sdk/midi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOut struct{ transfers [][]byte }

func (r *recordingOut) WriteContext(_ context.Context, buf []byte) (int, error) {
	r.transfers = append(r.transfers, append([]byte(nil), buf...))
	return len(buf), nil
}

func TestOutputsExposeCableControl(t *testing.T) {
	options, err := midi.ResolveOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	ep := &recordingOut{}
	outs := outputs([]*usbmidi.Output{usbmidi.NewOutput(ep, &options)})
	require.Len(t, outs, 1)

	require.NoError(t, outs[0].SetVirtualCable(1))
	require.NoError(t, outs[0].NoteOn(0, 0x3C, 0x64))
	assert.Equal(t, [][]byte{{0x19, 0x90, 0x3C, 0x64}}, ep.transfers)
}

func TestInputsKeepOrder(t *testing.T) {
	options, err := midi.ResolveOptions(contracts.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	a := usbmidi.NewInput(nil, &options)
	b := usbmidi.NewInput(nil, &options)
	ins := inputs([]*usbmidi.Input{a, b})

	require.Len(t, ins, 2)
	assert.Same(t, a, ins[0])
	assert.Same(t, b, ins[1])
}
