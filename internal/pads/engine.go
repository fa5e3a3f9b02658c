package pads

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/PixPMusic/gopher-pads/internal/log"
	"github.com/PixPMusic/gopher-pads/internal/playhead"
	"github.com/PixPMusic/gopher-pads/internal/trim"
	"github.com/PixPMusic/gopher-pads/internal/waveform"
	"github.com/golang/freetype/truetype"
)

const (
	DefaultWidth  = 620
	DefaultHeight = 100
)

// ErrSuperseded is returned by LoadSamples when a newer load started before
// this one finished. Its results are discarded.
var ErrSuperseded = errors.New("sample load superseded")

// Sample is a decoded buffer assigned to a pad.
type Sample struct {
	Buffer *audio.Buffer
	Name   string
	Slot   int
	// Source is the index of the descriptor the sample was loaded from.
	Source int
}

type trimEntry struct {
	pos  trim.Position
	name string
}

// Options wires an Engine to its collaborators.
type Options struct {
	Loader    Loader
	Scheduler *audio.Scheduler
	Bindings  Bindings
	Logger    *log.Logger

	Width  int
	Height int

	WaveformColor color.Color
	CaptionColor  color.Color
	// CaptionFont stamps the selected sample name onto the waveform. Nil
	// disables captions.
	CaptionFont *truetype.Font
}

// Engine owns per-pad state and keeps playback, waveform, trim markers and
// the playhead consistent across pointer, keyboard and MIDI input.
type Engine struct {
	loader    Loader
	scheduler *audio.Scheduler
	bindings  Bindings
	log       *log.Logger

	waveColor    color.Color
	captionColor color.Color
	captionFont  *truetype.Font

	mu         sync.Mutex
	samples    []*Sample
	trims      map[int]trimEntry
	selected   int
	loading    bool
	generation uint64
	keysDown   map[string]bool
	// triggers counts TriggerSlot selections; only the latest may start
	// the playhead.
	triggers uint64
	markers    *trim.Markers
	animator   *playhead.Animator
	wave       *image.RGBA
	overlay    *image.RGBA

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Bindings.Keys == nil {
		opts.Bindings = DefaultBindings()
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.WaveformColor == nil {
		opts.WaveformColor = waveform.DefaultColor
	}
	if opts.CaptionColor == nil {
		opts.CaptionColor = color.White
	}

	rect := image.Rect(0, 0, opts.Width, opts.Height)
	return &Engine{
		loader:       opts.Loader,
		scheduler:    opts.Scheduler,
		bindings:     opts.Bindings,
		log:          opts.Logger,
		waveColor:    opts.WaveformColor,
		captionColor: opts.CaptionColor,
		captionFont:  opts.CaptionFont,
		trims:        make(map[int]trimEntry),
		selected:     -1,
		keysDown:     make(map[string]bool),
		markers:      trim.NewMarkers(float64(opts.Width)),
		animator:     playhead.New(opts.Scheduler.Clock()),
		wave:         image.NewRGBA(rect),
		overlay:      image.NewRGBA(rect),
		listeners:    make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (e *Engine) Subscribe(l Listener) func() {
	e.lmu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	e.lmu.Unlock()
	return func() {
		e.lmu.Lock()
		delete(e.listeners, id)
		e.lmu.Unlock()
	}
}

func (e *Engine) emit(fn func(Listener)) {
	e.lmu.RLock()
	ls := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		ls = append(ls, l)
	}
	e.lmu.RUnlock()
	for _, l := range ls {
		fn(l)
	}
}

// LoadSamples fetches and decodes all descriptors concurrently and assigns
// the successful ones to slots in descriptor order. Failures are logged and
// skipped. Pads are disabled until the batch settles. If another load starts
// meanwhile this one returns ErrSuperseded and changes nothing.
func (e *Engine) LoadSamples(ctx context.Context, descs []Descriptor) ([]*Sample, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.loading = true
	pads := e.padsLocked()
	e.mu.Unlock()
	e.emit(func(l Listener) { l.PadsChanged(pads) })

	total := len(descs)
	buffers := make([]*audio.Buffer, total)

	var (
		wg      sync.WaitGroup
		pmu     sync.Mutex
		settled int
	)
	for i, d := range descs {
		wg.Add(1)
		go func(i int, d Descriptor) {
			defer wg.Done()
			buf, err := e.loader.Load(ctx, d)
			switch {
			case err != nil:
				e.log.Warnf("Skipping sample %q: %v", d.DisplayName(), err)
			case buf.Empty():
				e.log.Warnf("Skipping sample %q: no audio frames", d.DisplayName())
			default:
				buffers[i] = buf
			}

			pmu.Lock()
			defer pmu.Unlock()
			settled++
			if e.isCurrent(gen) {
				n := settled
				e.emit(func(l Listener) { l.LoadProgress(n, total) })
			}
		}(i, d)
	}
	wg.Wait()

	samples := make([]*Sample, 0, total)
	for i, buf := range buffers {
		if buf == nil {
			continue
		}
		if len(samples) == MaxSlots {
			e.log.Warnf("Only %d pads available, dropping %q", MaxSlots, descs[i].DisplayName())
			continue
		}
		samples = append(samples, &Sample{
			Buffer: buf,
			Name:   descs[i].DisplayName(),
			Slot:   len(samples),
			Source: i,
		})
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.log.Debugf("Discarding superseded load %d", gen)
		return nil, ErrSuperseded
	}
	e.loading = false
	if err := ctx.Err(); err != nil {
		pads = e.padsLocked()
		e.mu.Unlock()
		e.emit(func(l Listener) { l.PadsChanged(pads) })
		return nil, err
	}
	e.applyLocked(samples)
	pads = e.padsLocked()
	e.mu.Unlock()

	e.log.Infof("Loaded %d of %d samples", len(samples), total)
	e.emit(func(l Listener) { l.PadsChanged(pads) })
	return samples, nil
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// applyLocked swaps in a new sample set. Stored trims survive only for slots
// that still hold a sample of the same name.
func (e *Engine) applyLocked(samples []*Sample) {
	e.samples = samples
	for slot, t := range e.trims {
		if slot >= len(samples) || samples[slot].Name != t.name {
			delete(e.trims, slot)
		}
	}
	e.selected = -1
	waveform.Render(nil, e.wave, e.waveColor)
	e.markers.Set(trim.Full(e.markers.Width()))
}

func (e *Engine) sampleLocked(slot int) *Sample {
	if slot < 0 || slot >= len(e.samples) {
		return nil
	}
	return e.samples[slot]
}

func (e *Engine) trimLocked(slot int) trim.Position {
	if t, ok := e.trims[slot]; ok {
		return t.pos
	}
	return trim.Full(e.markers.Width())
}

func (e *Engine) selectLocked(s *Sample) {
	e.selected = s.Slot
	waveform.Render(s.Buffer, e.wave, e.waveColor)
	if err := waveform.Caption(e.wave, e.captionFont, s.Name, e.captionColor); err != nil {
		e.log.Warnf("Caption for %q: %v", s.Name, err)
	}
	e.markers.EndDrag()
	e.markers.Set(e.trimLocked(s.Slot))
}

// SelectSlot shows the waveform and trim markers for a slot. Returns false
// for an empty slot.
func (e *Engine) SelectSlot(slot int) bool {
	e.mu.Lock()
	s := e.sampleLocked(slot)
	if s == nil {
		e.mu.Unlock()
		e.log.Debugf("Select on empty slot %d", slot)
		return false
	}
	e.selectLocked(s)
	e.mu.Unlock()

	e.emit(func(l Listener) { l.Selected(s.Slot, s.Name) })
	return true
}

// TriggerSlot selects a slot and plays its trimmed window, starting the
// playhead on the returned clock handle. Empty slots and triggers while a
// load is in progress do nothing.
func (e *Engine) TriggerSlot(ctx context.Context, slot int) error {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		e.log.Debugf("Ignoring slot %d while loading", slot)
		return nil
	}
	s := e.sampleLocked(slot)
	if s == nil {
		e.mu.Unlock()
		e.log.Debugf("Trigger on empty slot %d", slot)
		return nil
	}
	changed := e.selected != slot
	if changed {
		e.selectLocked(s)
	}
	pos := e.trimLocked(slot)
	width := e.markers.Width()
	e.triggers++
	seq := e.triggers
	e.mu.Unlock()

	if changed {
		e.emit(func(l Listener) { l.Selected(s.Slot, s.Name) })
	}

	start, end, err := trim.Window(pos, s.Buffer.Duration(), width)
	if err != nil {
		return fmt.Errorf("trigger slot %d: %w", slot, err)
	}
	h, err := e.scheduler.Play(ctx, s.Buffer, start, end)
	if err != nil {
		return fmt.Errorf("trigger slot %d: %w", slot, err)
	}

	// A later trigger may have selected another pad (or the track may have
	// been resized) while this one waited on the clock.
	e.mu.Lock()
	if seq == e.triggers && e.selected == slot {
		if w := e.markers.Width(); w != width {
			pos = trim.ScalePosition(pos, width, w)
		}
		token := e.animator.Start(pos.Left, pos.Right, h.ClockStart, h.Duration)
		go e.stopPlayheadWhenDone(h, token)
	}
	e.mu.Unlock()

	e.emit(func(l Listener) {
		l.Highlight(slot, true)
		l.Played(slot, h)
	})
	return nil
}

// stopPlayheadWhenDone idles the playhead once the voice has finished and
// the clock has caught up with its end. The mixer finishes a voice before
// its last frames reach the speakers.
func (e *Engine) stopPlayheadWhenDone(h *audio.Handle, token uint64) {
	<-h.Done
	if lag := h.End() - e.scheduler.Clock().Now(); lag > 0 {
		time.Sleep(time.Duration(lag * float64(time.Second)))
	}
	e.mu.Lock()
	e.animator.StopIf(token)
	e.mu.Unlock()
}

// Release clears the input highlight for a slot. It never affects playback.
func (e *Engine) Release(slot int) {
	e.mu.Lock()
	s := e.sampleLocked(slot)
	e.mu.Unlock()
	if s == nil {
		return
	}
	e.emit(func(l Listener) { l.Highlight(slot, false) })
}

// PadDown handles a pointer press on a pad.
func (e *Engine) PadDown(ctx context.Context, slot int) error {
	return e.TriggerSlot(ctx, slot)
}

// PadUp handles a pointer release on a pad.
func (e *Engine) PadUp(slot int) {
	e.Release(slot)
}

// KeyDown triggers the slot bound to key. Repeats of a key that is already
// down are ignored until KeyUp.
func (e *Engine) KeyDown(ctx context.Context, key string) error {
	slot, ok := e.bindings.KeySlot(key)
	if !ok {
		return nil
	}
	e.mu.Lock()
	if e.keysDown[key] {
		e.mu.Unlock()
		return nil
	}
	e.keysDown[key] = true
	e.mu.Unlock()
	return e.TriggerSlot(ctx, slot)
}

// KeyUp re-arms key and clears its highlight.
func (e *Engine) KeyUp(key string) {
	slot, ok := e.bindings.KeySlot(key)
	if !ok {
		return
	}
	e.mu.Lock()
	delete(e.keysDown, key)
	e.mu.Unlock()
	e.Release(slot)
}

// NoteOn triggers the slot bound to note. Velocity 0 is a note-off.
func (e *Engine) NoteOn(ctx context.Context, note, velocity uint8) error {
	if velocity == 0 {
		e.NoteOff(note)
		return nil
	}
	slot, ok := e.bindings.NoteSlot(note)
	if !ok {
		return nil
	}
	return e.TriggerSlot(ctx, slot)
}

func (e *Engine) NoteOff(note uint8) {
	if slot, ok := e.bindings.NoteSlot(note); ok {
		e.Release(slot)
	}
}

// GridPress handles a press or release at a grid cell, as reported by a
// pad controller.
func (e *Engine) GridPress(ctx context.Context, row, col int, on bool) error {
	slot, ok := SlotAt(row, col)
	if !ok {
		return nil
	}
	if !on {
		e.Release(slot)
		return nil
	}
	return e.TriggerSlot(ctx, slot)
}

// PointerDown grabs a trim marker near x (overlay pixels).
func (e *Engine) PointerDown(x float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers.BeginDrag(x) != trim.TargetNone
}

// PointerMove drags the grabbed marker.
func (e *Engine) PointerMove(x float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers.MoveTo(x)
}

// PointerUp releases the marker and stores the position for the selected
// slot.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.markers.Dragging() == trim.TargetNone {
		return
	}
	pos := e.markers.EndDrag()
	if s := e.sampleLocked(e.selected); s != nil {
		e.trims[s.Slot] = trimEntry{pos: pos, name: s.Name}
	}
}

// Resize reallocates both surfaces and rescales every trim position so
// each keeps the same time window.
func (e *Engine) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if b := e.wave.Bounds(); b.Dx() == width && b.Dy() == height {
		return false
	}

	oldW := e.markers.Width()
	newW := float64(width)
	e.markers.Resize(newW)
	if oldW > 0 {
		e.animator.Rescale(newW / oldW)
	}
	for slot, t := range e.trims {
		t.pos = trim.ScalePosition(t.pos, oldW, newW)
		e.trims[slot] = t
	}

	rect := image.Rect(0, 0, width, height)
	e.wave = image.NewRGBA(rect)
	e.overlay = image.NewRGBA(rect)
	if s := e.sampleLocked(e.selected); s != nil {
		waveform.Render(s.Buffer, e.wave, e.waveColor)
		if err := waveform.Caption(e.wave, e.captionFont, s.Name, e.captionColor); err != nil {
			e.log.Warnf("Caption for %q: %v", s.Name, err)
		}
	}
	return true
}

// Frame redraws the overlay for the current audio clock time: markers
// first, playhead on top. Returns whether the playhead is still moving.
func (e *Engine) Frame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markers.Render(e.overlay)
	return e.animator.Frame(e.overlay)
}

// Pads returns the display state of every grid cell, indexed by slot.
func (e *Engine) Pads() []Pad {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.padsLocked()
}

func (e *Engine) padsLocked() []Pad {
	out := make([]Pad, MaxSlots)
	for i := range out {
		row, col := GridPosition(i)
		p := Pad{Slot: i, Row: row, Col: col, Key: e.bindings.KeyLabel(i)}
		if s := e.sampleLocked(i); s != nil {
			p.Name = s.Name
			p.Label = Label(s.Name)
			p.Loaded = true
			p.Enabled = !e.loading
		}
		out[i] = p
	}
	return out
}

func (e *Engine) Samples() []*Sample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Sample(nil), e.samples...)
}

// Sample returns the sample in slot, or nil.
func (e *Engine) Sample(slot int) *Sample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sampleLocked(slot)
}

func (e *Engine) Selected() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// TrimPosition returns the stored or default trim for slot.
func (e *Engine) TrimPosition(slot int) trim.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trimLocked(slot)
}

// SetTrimPosition stores a trim for a loaded slot, clamped to the track.
func (e *Engine) SetTrimPosition(slot int, pos trim.Position) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.sampleLocked(slot)
	if s == nil {
		return false
	}
	pos = pos.Clamp(e.markers.Width())
	e.trims[slot] = trimEntry{pos: pos, name: s.Name}
	if slot == e.selected {
		e.markers.Set(pos)
	}
	return true
}

// Markers returns the live marker position.
func (e *Engine) Markers() trim.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markers.Position()
}

// Playing reports whether the playhead is animating.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animator.State() == playhead.Active
}

// WaveformImage returns a copy of the waveform surface.
func (e *Engine) WaveformImage() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneRGBA(e.wave)
}

// OverlayImage returns a copy of the overlay surface.
func (e *Engine) OverlayImage() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneRGBA(e.overlay)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
