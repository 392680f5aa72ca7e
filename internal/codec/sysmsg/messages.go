package sysmsg

import "github.com/leandrodaf/midiwire/sdk/contracts"

// MessageReceiver adapts a callback to contracts.SystemMessageReceiver.
type MessageReceiver func(contracts.SystemMessage)

func (f MessageReceiver) OnSystemExclusive(payload []byte) {
	f(contracts.SystemMessage{Kind: contracts.SystemExclusive, Data: payload})
}

func (f MessageReceiver) OnTimeCode(value int) {
	f(contracts.SystemMessage{Kind: contracts.TimeCode, Value: value})
}

func (f MessageReceiver) OnSongPosition(pointer int) {
	f(contracts.SystemMessage{Kind: contracts.SongPosition, Value: pointer})
}

func (f MessageReceiver) OnSongSelect(index int) {
	f(contracts.SystemMessage{Kind: contracts.SongSelect, Value: index})
}

func (f MessageReceiver) OnTuneRequest()   { f(contracts.SystemMessage{Kind: contracts.TuneRequest}) }
func (f MessageReceiver) OnTimingClock()   { f(contracts.SystemMessage{Kind: contracts.TimingClock}) }
func (f MessageReceiver) OnStart()         { f(contracts.SystemMessage{Kind: contracts.Start}) }
func (f MessageReceiver) OnContinue()      { f(contracts.SystemMessage{Kind: contracts.Continue}) }
func (f MessageReceiver) OnStop()          { f(contracts.SystemMessage{Kind: contracts.Stop}) }
func (f MessageReceiver) OnActiveSensing() { f(contracts.SystemMessage{Kind: contracts.ActiveSensing}) }
func (f MessageReceiver) OnSystemReset()   { f(contracts.SystemMessage{Kind: contracts.SystemReset}) }
