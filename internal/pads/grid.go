package pads

import "unicode/utf8"

const (
	Rows     = 4
	Cols     = 4
	MaxSlots = Rows * Cols

	labelLimit = 20
)

// GridPosition places slot i in the grid, filling the bottom row first,
// left to right.
func GridPosition(slot int) (row, col int) {
	return Rows - 1 - slot/Cols, slot % Cols
}

// SlotAt is the inverse of GridPosition.
func SlotAt(row, col int) (int, bool) {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0, false
	}
	return (Rows-1-row)*Cols + col, true
}

// Pad is the display state of one grid cell.
type Pad struct {
	Slot    int
	Row     int
	Col     int
	Key     string
	Name    string
	Label   string
	Loaded  bool
	Enabled bool
}

// Label shortens a sample name for a pad face.
func Label(name string) string {
	if utf8.RuneCountInString(name) <= labelLimit {
		return name
	}
	r := []rune(name)
	return string(r[:labelLimit]) + "…"
}
