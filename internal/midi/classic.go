package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Launchpad S: the top row is CC 104-111, grid rows are notes with a
// stride of 16 per row. The velocity byte packs GG11RR.
type classicDevice struct{}

const (
	classicTopCC    = 104
	classicFlags    = 0x0C
	classicRowWidth = 16
)

func (classicDevice) ActivateProgrammerMode(send func(midi.Message) error) error {
	if err := send(midi.ControlChange(0, 0, 0)); err != nil {
		return fmt.Errorf("reset launchpad s: %w", err)
	}
	return nil
}

func (classicDevice) SetPadColor(send func(midi.Message) error, row, col int, color PadColor) error {
	if row < 0 || row > 8 || col < 0 || col > 8 {
		return nil
	}
	v := classicVelocity(color)
	if row == 0 {
		if col == 8 {
			return nil
		}
		return send(midi.ControlChange(0, uint8(classicTopCC+col), v))
	}
	return send(midi.NoteOn(0, classicNote(row, col), v))
}

func (classicDevice) ClearAllPads(send func(midi.Message) error) error {
	return send(midi.ControlChange(0, 0, 0))
}

func (classicDevice) HandleMessage(msg midi.Message) (int, int, bool, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if row, col, ok := classicGrid(key); ok {
			return row, col, vel > 0, true
		}
	case msg.GetNoteOff(&ch, &key, &vel):
		if row, col, ok := classicGrid(key); ok {
			return row, col, false, true
		}
	case msg.GetControlChange(&ch, &key, &vel):
		if key >= classicTopCC && key < classicTopCC+8 {
			return 0, int(key - classicTopCC), vel > 0, true
		}
	}
	return 0, 0, false, false
}

func classicNote(row, col int) uint8 {
	return uint8((row-1)*classicRowWidth + col)
}

func classicGrid(key uint8) (row, col int, ok bool) {
	row = int(key/classicRowWidth) + 1
	col = int(key % classicRowWidth)
	return row, col, row <= 8 && col <= 8
}

// classicVelocity folds blue into red and green, since the S only has
// two LED dies.
func classicVelocity(c PadColor) uint8 {
	if c.Off() {
		return classicFlags
	}
	r := min(int(c.R)+int(c.B)/4, 127)
	g := min(int(c.G)+int(c.B)*3/4, 127)
	return fourLevel(g)<<4 | classicFlags | fourLevel(r)
}

func fourLevel(v int) uint8 {
	switch {
	case v < 32:
		return 0
	case v < 64:
		return 1
	case v < 96:
		return 2
	}
	return 3
}
