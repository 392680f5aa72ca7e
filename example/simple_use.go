package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/midiwire/internal/logger"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/leandrodaf/midiwire/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	}

	input, err := midi.NewHostInput(opts...)
	if err != nil {
		log.Error("Failed to initialize MIDI input", log.Field().Error("error", err))
		return
	}

	devices, err := input.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	if err = input.SelectDevice(0); err != nil {
		log.Error("Failed to select MIDI device", log.Field().Error("error", err))
		return
	}

	receiver, err := midi.NewEventReceiver(func(ev contracts.Event) {
		log.Info("MIDI Event",
			log.Field().String("Command", ev.Command.String()),
			log.Field().Int("Channel", ev.Channel),
			log.Field().Int("Note", ev.Note),
			log.Field().Int("Velocity", ev.Value),
		)
	}, opts...)
	if err != nil {
		log.Error("Failed to create receiver", log.Field().Error("error", err))
		return
	}

	if err = input.Start(midi.NewDecoder(receiver)); err != nil {
		log.Error("Failed to start capture", log.Field().Error("error", err))
		return
	}
	defer input.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	<-ctx.Done()
}
