package contracts

// DeviceInfo contains information about a host MIDI source.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// HostInput is a MIDI source provided by the operating system. Incoming bytes
// are delivered unparsed to the receiver given to Start.
type HostInput interface {
	ListDevices() ([]DeviceInfo, error)
	SelectDevice(deviceID int) error
	Start(receiver RawByteReceiver) error
	Stop() error
}
