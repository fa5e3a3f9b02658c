package midi

import (
	"sync"

	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/pads"
)

// Lights is the part of Manager that Feedback drives.
type Lights interface {
	SetPadColor(port string, t DeviceType, row, col int, c PadColor) error
}

// Output is a controller whose LEDs mirror the pad grid.
type Output struct {
	Port string
	Type DeviceType
}

// Colors used for pad LEDs.
type Colors struct {
	Empty   PadColor
	Loaded  PadColor
	Pressed PadColor
}

func DefaultColors() Colors {
	return Colors{
		Loaded:  PadColor{R: 0, G: 60, B: 20},
		Pressed: PadColor{R: 127, G: 127, B: 127},
	}
}

// Feedback lights controller pads to match engine state. It implements
// pads.Listener.
type Feedback struct {
	lights Lights
	log    *log.Logger

	mu      sync.Mutex
	colors  Colors
	outputs []Output
	pads    []pads.Pad
	pressed map[int]bool
}

var _ pads.Listener = (*Feedback)(nil)

func NewFeedback(lights Lights, colors Colors, logger *log.Logger) *Feedback {
	if logger == nil {
		logger = log.Default()
	}
	return &Feedback{
		lights:  lights,
		log:     logger,
		colors:  colors,
		pressed: make(map[int]bool),
	}
}

// SetOutputs replaces the controllers being lit and repaints them.
func (f *Feedback) SetOutputs(outs []Output) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs = append([]Output(nil), outs...)
	for _, p := range f.pads {
		f.paintLocked(p)
	}
}

func (f *Feedback) SetColors(c Colors) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colors = c
	for _, p := range f.pads {
		f.paintLocked(p)
	}
}

func (f *Feedback) PadsChanged(ps []pads.Pad) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pads = append(f.pads[:0], ps...)
	for _, p := range f.pads {
		if !p.Loaded {
			delete(f.pressed, p.Slot)
		}
		f.paintLocked(p)
	}
}

func (f *Feedback) Highlight(slot int, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot < 0 || slot >= len(f.pads) {
		return
	}
	if on {
		f.pressed[slot] = true
	} else {
		delete(f.pressed, slot)
	}
	f.paintLocked(f.pads[slot])
}

func (f *Feedback) LoadProgress(int, int) {}
func (f *Feedback) Selected(int, string) {}
func (f *Feedback) Played(int, *audio.Handle) {}

func (f *Feedback) colorLocked(p pads.Pad) PadColor {
	switch {
	case f.pressed[p.Slot]:
		return f.colors.Pressed
	case p.Loaded:
		return f.colors.Loaded
	}
	return f.colors.Empty
}

func (f *Feedback) paintLocked(p pads.Pad) {
	c := f.colorLocked(p)
	row, col := DeviceGrid(p.Row, p.Col)
	for _, out := range f.outputs {
		if err := f.lights.SetPadColor(out.Port, out.Type, row, col, c); err != nil {
			f.log.Warnf("Lighting pad %d on %s: %v", p.Slot, out.Port, err)
		}
	}
}
