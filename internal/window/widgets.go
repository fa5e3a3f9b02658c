package window

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/PixPMusic/gopher-pads/internal/pads"
)

var (
	padEmptyColor   = color.NRGBA{R: 0x2a, G: 0x2a, B: 0x2a, A: 0xff}
	padLoadedColor  = color.NRGBA{R: 0x3d, G: 0x5a, B: 0x80, A: 0xff}
	padPressedColor = color.NRGBA{R: 0x83, G: 0xe8, B: 0x3e, A: 0xff}
	padDisabled     = color.NRGBA{R: 0x3d, G: 0x5a, B: 0x80, A: 0x60}
)

// ============ TAPPABLE RECTANGLE WIDGET ============

type tappableRect struct {
	widget.BaseWidget
	rect  *canvas.Rectangle
	onTap func()
}

func newTappableRect(rect *canvas.Rectangle, onTap func()) *tappableRect {
	t := &tappableRect{rect: rect, onTap: onTap}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tappableRect) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.rect)
}

func (t *tappableRect) Tapped(_ *fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

// ============ PAD BUTTON ============

// padButton reports press and release separately so a held pad stays
// highlighted.
type padButton struct {
	widget.BaseWidget
	rect  *canvas.Rectangle
	label *canvas.Text
	key   *canvas.Text

	pad     pads.Pad
	pressed bool

	onDown func()
	onUp   func()
}

func newPadButton(onDown, onUp func()) *padButton {
	rect := canvas.NewRectangle(padEmptyColor)
	rect.SetMinSize(fyne.NewSize(96, 72))
	rect.CornerRadius = 6

	label := canvas.NewText("", theme.Color(theme.ColorNameForeground))
	label.Alignment = fyne.TextAlignCenter
	label.TextStyle = fyne.TextStyle{Bold: true}

	key := canvas.NewText("", theme.Color(theme.ColorNamePlaceHolder))
	key.Alignment = fyne.TextAlignTrailing
	key.TextSize = theme.CaptionTextSize()

	p := &padButton{rect: rect, label: label, key: key, onDown: onDown, onUp: onUp}
	p.ExtendBaseWidget(p)
	return p
}

func (p *padButton) CreateRenderer() fyne.WidgetRenderer {
	face := container.NewBorder(nil, container.NewPadded(p.key), nil, nil, container.NewCenter(p.label))
	return widget.NewSimpleRenderer(container.NewStack(p.rect, face))
}

// SetPad updates the face from engine state.
func (p *padButton) SetPad(pad pads.Pad) {
	p.pad = pad
	if !pad.Loaded {
		p.pressed = false
	}
	p.label.Text = pad.Label
	p.key.Text = pad.Key
	p.repaint()
}

func (p *padButton) SetPressed(on bool) {
	p.pressed = on && p.pad.Loaded
	p.repaint()
}

func (p *padButton) repaint() {
	switch {
	case !p.pad.Loaded:
		p.rect.FillColor = padEmptyColor
	case !p.pad.Enabled:
		p.rect.FillColor = padDisabled
	case p.pressed:
		p.rect.FillColor = padPressedColor
	default:
		p.rect.FillColor = padLoadedColor
	}
	p.Refresh()
}

func (p *padButton) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !p.pad.Enabled {
		return
	}
	if p.onDown != nil {
		p.onDown()
	}
}

func (p *padButton) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if p.onUp != nil {
		p.onUp()
	}
}

// Tapped covers touch drivers, which never send mouse events.
func (p *padButton) Tapped(_ *fyne.PointEvent) {
	if _, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
		return
	}
	if p.pad.Enabled && p.onDown != nil {
		p.onDown()
	}
	if p.onUp != nil {
		p.onUp()
	}
}

// ============ TRIM SURFACE ============

// trimSurface stacks the waveform and overlay rasters and turns pointer
// input into surface pixel coordinates.
type trimSurface struct {
	widget.BaseWidget
	content fyne.CanvasObject

	onDown func(x float64) bool
	onMove func(x float64) bool
	onUp   func()
}

func newTrimSurface(wave, overlay *canvas.Raster) *trimSurface {
	wave.SetMinSize(fyne.NewSize(pads.DefaultWidth, pads.DefaultHeight))
	t := &trimSurface{content: container.NewStack(wave, overlay)}
	t.ExtendBaseWidget(t)
	return t
}

func (t *trimSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// pixels converts a position in fyne units to raster pixels.
func (t *trimSurface) pixels(pos fyne.Position) float64 {
	scale := float32(1)
	if c := fyne.CurrentApp().Driver().CanvasForObject(t); c != nil {
		scale = c.Scale()
	}
	return float64(pos.X * scale)
}

func (t *trimSurface) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary && t.onDown != nil {
		t.onDown(t.pixels(e.Position))
	}
}

func (t *trimSurface) MouseUp(*desktop.MouseEvent) {
	if t.onUp != nil {
		t.onUp()
	}
}

func (t *trimSurface) Dragged(e *fyne.DragEvent) {
	if t.onMove != nil {
		t.onMove(t.pixels(e.Position))
	}
}

func (t *trimSurface) DragEnd() {
	if t.onUp != nil {
		t.onUp()
	}
}
