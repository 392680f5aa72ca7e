// Command midimon decodes MIDI from a byte stream and logs every message.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/leandrodaf/midiwire/internal/bluetooth"
	"github.com/leandrodaf/midiwire/internal/logger"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/leandrodaf/midiwire/sdk/midi"
	"github.com/leandrodaf/midiwire/sdk/midi/usbdevice"
)

func main() {
	hexIn := flag.String("hex", "", `decode hex bytes, or "-" to read hex lines from stdin`)
	btAddr := flag.String("bt", "", "Bluetooth device address to connect to over RFCOMM")
	channel := flag.Uint("channel", midi.DefaultRFCOMMChannel, "RFCOMM channel")
	serialDev := flag.String("serial", "", "serial tty carrying MIDI")
	baud := flag.Int("baud", midi.DefaultBaudRate, "serial baud rate")
	usbID := flag.String("usb", "", "USB-MIDI device as VID:PID in hex")
	cable := flag.Int("cable", contracts.AnyCable, "USB virtual cable to monitor, -1 for all")
	host := flag.Int("host", -1, "index of the host MIDI input to monitor")
	list := flag.Bool("list", false, "list host MIDI inputs and serial ports")
	debug := flag.Bool("debug", false, "enable debug logging")
	logFile := flag.String("log", "", "write logs to this file instead of stderr")
	flag.Parse()

	log := logger.NewZapLogger()
	level := contracts.InfoLevel
	if *debug {
		level = contracts.DebugLevel
	}
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithLogFile(*logFile),
		contracts.WithInputCable(*cable),
		contracts.WithRFCOMMChannel(uint8(*channel)),
		contracts.WithBaudRate(*baud),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon := &monitor{log: log, done: make(chan error, 1)}
	receiver, err := mon.receiver(opts)
	if err != nil {
		log.Fatal("Invalid options", log.Field().Error("error", err))
	}

	switch {
	case *list:
		err = listInputs(opts)
	case *hexIn != "":
		err = runHex(*hexIn, midi.NewDecoder(receiver))
	case *btAddr != "":
		var dev contracts.BluetoothMIDI
		if dev, err = midi.NewBluetoothDevice(receiver, mon, opts...); err == nil {
			err = mon.runStream(ctx, dev, *btAddr)
		}
	case *serialDev != "":
		var dev contracts.BluetoothMIDI
		if dev, err = midi.NewSerialDevice(receiver, mon, opts...); err == nil {
			err = mon.runStream(ctx, dev, *serialDev)
		}
	case *usbID != "":
		err = runUSB(ctx, *usbID, mon, opts)
	case *host >= 0:
		err = runHost(ctx, *host, receiver, opts)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("midimon failed", log.Field().Error("error", err))
	}
}

// monitor logs decoded messages and connection changes.
type monitor struct {
	log  contracts.Logger
	done chan error
}

func (m *monitor) receiver(opts []contracts.Option) (contracts.MidiReceiver, error) {
	events, err := midi.NewEventReceiver(m.onEvent, opts...)
	if err != nil {
		return nil, err
	}
	return midi.NewSystemFilter(events, midi.NewSystemMessageReceiver(m.onSystem)), nil
}

func (m *monitor) onEvent(ev contracts.Event) {
	m.log.Info(describe(ev),
		m.log.Field().String("command", ev.Command.String()),
		m.log.Field().Int("channel", ev.Channel),
		m.log.Field().Int("note", ev.Note),
		m.log.Field().Int("value", ev.Value))
}

func (m *monitor) onSystem(msg contracts.SystemMessage) {
	m.log.Info(describeSystem(msg), m.log.Field().String("kind", msg.Kind.String()))
}

func (m *monitor) OnDeviceConnected(address string) {
	m.log.Info("Monitoring", m.log.Field().String("address", address))
}

func (m *monitor) OnConnectionFailed(err error) { m.finish(fmt.Errorf("connect: %w", err)) }

func (m *monitor) OnConnectionLost(err error) { m.finish(fmt.Errorf("connection lost: %w", err)) }

func (m *monitor) finish(err error) {
	select {
	case m.done <- err:
	default:
	}
}

func (m *monitor) runStream(ctx context.Context, dev contracts.BluetoothMIDI, address string) error {
	if err := dev.Connect(address); err != nil {
		return err
	}
	var err error
	select {
	case <-ctx.Done():
	case err = <-m.done:
	}
	if cerr := dev.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func runHex(arg string, dec contracts.RawByteReceiver) error {
	if arg != "-" {
		return decodeHex(arg, dec)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := decodeHex(scanner.Text(), dec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// decodeHex feeds one line of hex, with or without separators, to dec.
func decodeHex(line string, dec contracts.RawByteReceiver) error {
	clean := strings.NewReplacer(" ", "", ":", "", ",", "", "\t", "").Replace(line)
	clean = strings.TrimPrefix(strings.ToLower(clean), "0x")
	buf, err := hex.DecodeString(clean)
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrInvalidArgument, err)
	}
	return dec.OnBytesReceived(buf)
}

func parseUSBID(s string) (uint16, uint16, error) {
	vidStr, pidStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: USB id %q, want VID:PID", contracts.ErrInvalidArgument, s)
	}
	vid, err := strconv.ParseUint(vidStr, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: vendor id %q", contracts.ErrInvalidArgument, vidStr)
	}
	pid, err := strconv.ParseUint(pidStr, 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: product id %q", contracts.ErrInvalidArgument, pidStr)
	}
	return uint16(vid), uint16(pid), nil
}

func runUSB(ctx context.Context, id string, mon *monitor, opts []contracts.Option) error {
	vid, pid, err := parseUSBID(id)
	if err != nil {
		return err
	}
	dev, err := usbdevice.Open(vid, pid, opts...)
	if err != nil {
		return err
	}
	defer dev.Close()

	inputs := dev.Inputs()
	if len(inputs) == 0 {
		return fmt.Errorf("%w: device %s has no MIDI input endpoint", contracts.ErrNoEndpoint, id)
	}
	if err := startInputs(inputs, func() (contracts.MidiReceiver, error) { return mon.receiver(opts) }); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// startInputs starts every input with a receiver of its own. Each input
// polls on its own goroutine and the system message filter keeps SysEx
// state, so receivers are never shared.
func startInputs(inputs []contracts.USBInput, newReceiver func() (contracts.MidiReceiver, error)) error {
	for _, in := range inputs {
		receiver, err := newReceiver()
		if err != nil {
			return err
		}
		in.SetReceiver(receiver)
		if err := in.Start(); err != nil {
			return err
		}
	}
	return nil
}

func runHost(ctx context.Context, index int, receiver contracts.MidiReceiver, opts []contracts.Option) error {
	input, err := midi.NewHostInput(opts...)
	if err != nil {
		return err
	}
	if err := input.SelectDevice(index); err != nil {
		return err
	}
	if err := input.Start(midi.NewDecoder(receiver)); err != nil {
		return err
	}
	defer input.Stop()

	<-ctx.Done()
	return nil
}

func listInputs(opts []contracts.Option) error {
	if input, err := midi.NewHostInput(opts...); err == nil {
		devices, err := input.ListDevices()
		if err != nil && !errors.Is(err, contracts.ErrUnsupported) {
			return err
		}
		for i, d := range devices {
			fmt.Printf("host %d: %s (%s, %s)\n", i, d.Name, d.EntityName, d.Manufacturer)
		}
	}

	ports, err := bluetooth.SerialPorts()
	if err != nil {
		return err
	}
	for _, p := range ports {
		fmt.Printf("serial: %s\n", p)
	}
	return nil
}
