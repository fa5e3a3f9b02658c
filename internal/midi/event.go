package midi

import "gitlab.com/gomidi/midi/v2"

// The sampler occupies the bottom-left 4x4 block of a Launchpad grid.
const (
	padRows   = 4
	padCols   = 4
	padRowTop = 9 - padRows
)

// Event is one press or release from an input port. Grid events carry a
// pad-grid position; note events carry the raw note for keyboard
// mapping.
type Event struct {
	Port     string
	Grid     bool
	Row, Col int
	Note     uint8
	Velocity uint8
	On       bool
}

// PadGrid converts a device position to the sampler's 4x4 grid.
func PadGrid(devRow, devCol int) (row, col int, ok bool) {
	row, col = devRow-padRowTop, devCol
	if row < 0 || row >= padRows || col < 0 || col >= padCols {
		return 0, 0, false
	}
	return row, col, true
}

// DeviceGrid is the inverse of PadGrid.
func DeviceGrid(row, col int) (devRow, devCol int) {
	return row + padRowTop, col
}

// Translate turns a raw message into an Event. Grid presses outside the
// sampler block and anything other than notes are dropped. A note on
// with velocity 0 is a release.
func Translate(dev Device, port string, msg midi.Message) (Event, bool) {
	if devRow, devCol, on, handled := dev.HandleMessage(msg); handled {
		row, col, ok := PadGrid(devRow, devCol)
		if !ok {
			return Event{}, false
		}
		return Event{Port: port, Grid: true, Row: row, Col: col, On: on}, true
	}

	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return Event{Port: port, Note: key, Velocity: vel, On: vel > 0}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return Event{Port: port, Note: key, Velocity: vel}, true
	}
	return Event{}, false
}

// Input is a port to listen on and the device that decodes it.
type Input struct {
	Port string
	Type DeviceType
}

// Inputs returns the configured inputs that have a port. When none do,
// every available port is used as a generic note source.
func Inputs(configured []Input, available []string) []Input {
	var out []Input
	for _, in := range configured {
		if in.Port != "" {
			out = append(out, in)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, port := range available {
		out = append(out, Input{Port: port, Type: DeviceTypeGeneric})
	}
	return out
}
