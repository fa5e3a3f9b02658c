package midi

import "gitlab.com/gomidi/midi/v2"

// DeviceType selects the protocol spoken by a controller.
type DeviceType string

const (
	DeviceTypeClassic  DeviceType = "classic"  // Launchpad S, note/CC velocity colors
	DeviceTypeColorful DeviceType = "colorful" // Launchpad Mini Mk3, RGB over SysEx
	DeviceTypeGeneric  DeviceType = "generic"  // plain note keyboard or DAW
)

// PadColor is an RGB color with 0-127 per channel.
type PadColor struct {
	R, G, B uint8
}

// Off reports whether the color is dark enough to switch the LED off.
func (c PadColor) Off() bool {
	return c.R < 5 && c.G < 5 && c.B < 5
}

// Device translates between grid coordinates and a controller's MIDI
// messages. Rows and columns use the 9x9 Launchpad layout: row 0 is the
// top control row, rows 1-8 are the grid, column 8 is the scene column.
type Device interface {
	// ActivateProgrammerMode puts the controller in a state where every
	// pad is addressable.
	ActivateProgrammerMode(send func(midi.Message) error) error

	SetPadColor(send func(midi.Message) error, row, col int, color PadColor) error

	ClearAllPads(send func(midi.Message) error) error

	// HandleMessage reports handled=false for messages that are not grid
	// presses.
	HandleMessage(msg midi.Message) (row, col int, on bool, handled bool)
}

// GetDevice returns the implementation for t. Unknown types get the
// colorful protocol.
func GetDevice(t DeviceType) Device {
	switch t {
	case DeviceTypeClassic:
		return classicDevice{}
	case DeviceTypeGeneric:
		return genericDevice{}
	default:
		return colorfulDevice{}
	}
}

type genericDevice struct{}

func (genericDevice) ActivateProgrammerMode(func(midi.Message) error) error { return nil }

func (genericDevice) SetPadColor(func(midi.Message) error, int, int, PadColor) error { return nil }

func (genericDevice) ClearAllPads(func(midi.Message) error) error { return nil }

func (genericDevice) HandleMessage(midi.Message) (int, int, bool, bool) { return 0, 0, false, false }
