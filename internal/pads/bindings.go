package pads

// DefaultBaseNote is the MIDI note bound to slot 0 (C1 on most controllers).
const DefaultBaseNote = 36

// DefaultKeys binds physical keys to slots. The rows mirror the pad grid:
// the bottom letter row plays the bottom pads.
var DefaultKeys = map[string]int{
	"Z": 0, "X": 1, "C": 2, "V": 3,
	"A": 4, "S": 5, "D": 6, "F": 7,
	"Q": 8, "W": 9, "E": 10, "R": 11,
	"1": 12, "2": 13, "3": 14, "4": 15,
}

// Bindings resolves keyboard keys and MIDI notes to slots.
type Bindings struct {
	Keys     map[string]int
	BaseNote uint8

	labels map[int]string
}

// DefaultBindings returns the standard key map with notes 36-51.
func DefaultBindings() Bindings {
	return NewBindings(DefaultKeys, DefaultBaseNote)
}

func NewBindings(keys map[string]int, baseNote uint8) Bindings {
	b := Bindings{
		Keys:     make(map[string]int, len(keys)),
		BaseNote: baseNote,
		labels:   make(map[int]string, len(keys)),
	}
	for k, slot := range keys {
		b.Keys[k] = slot
		if prev, ok := b.labels[slot]; !ok || k < prev {
			b.labels[slot] = k
		}
	}
	return b
}

// KeySlot returns the slot bound to a key name.
func (b Bindings) KeySlot(key string) (int, bool) {
	slot, ok := b.Keys[key]
	return slot, ok
}

// NoteSlot returns the slot bound to a MIDI note.
func (b Bindings) NoteSlot(note uint8) (int, bool) {
	if note < b.BaseNote || int(note-b.BaseNote) >= MaxSlots {
		return 0, false
	}
	return int(note - b.BaseNote), true
}

// KeyLabel returns the key shown in the corner of a pad.
func (b Bindings) KeyLabel(slot int) string {
	return b.labels[slot]
}
