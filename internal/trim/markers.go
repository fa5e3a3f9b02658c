package trim

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// HitRadius is how close (in pixels) a pointer must be to grab a marker.
	HitRadius = 10.0
	// MinSeparation keeps the markers from crossing or coinciding.
	MinSeparation = 1.0

	markerWidth = 2
)

// Target identifies which marker, if any, is being dragged.
type Target int

const (
	TargetNone Target = iota
	TargetLeft
	TargetRight
)

func (t Target) String() string {
	switch t {
	case TargetLeft:
		return "left"
	case TargetRight:
		return "right"
	default:
		return "none"
	}
}

var (
	DefaultMarkerColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	DefaultShadeColor  = color.RGBA{A: 0x80}
)

// Markers is the left/right trim marker pair drawn on the overlay surface.
type Markers struct {
	pos   Position
	width float64
	drag  Target

	MarkerColor color.Color
	ShadeColor  color.Color
}

// NewMarkers returns a pair spanning a track of the given width.
func NewMarkers(width float64) *Markers {
	return &Markers{
		pos:         Full(width),
		width:       width,
		MarkerColor: DefaultMarkerColor,
		ShadeColor:  DefaultShadeColor,
	}
}

func (m *Markers) Position() Position { return m.pos }

func (m *Markers) Width() float64 { return m.width }

func (m *Markers) Dragging() Target { return m.drag }

// Set moves both markers, clamped to the track.
func (m *Markers) Set(p Position) {
	m.pos = p.Clamp(m.width)
}

// BeginDrag grabs the marker under x. When both are within reach the nearer
// one wins.
func (m *Markers) BeginDrag(x float64) Target {
	dl := math.Abs(x - m.pos.Left)
	dr := math.Abs(x - m.pos.Right)
	switch {
	case dl > HitRadius && dr > HitRadius:
		m.drag = TargetNone
	case dl < dr:
		m.drag = TargetLeft
	case dr < dl:
		m.drag = TargetRight
	case x >= m.pos.Right:
		m.drag = TargetRight
	default:
		m.drag = TargetLeft
	}
	return m.drag
}

// MoveTo moves the dragged marker to x. The dragged marker follows the
// pointer; the stationary one yields to preserve ordering. Returns false when
// no drag is in progress.
func (m *Markers) MoveTo(x float64) bool {
	if m.width < MinSeparation {
		return false
	}
	switch m.drag {
	case TargetLeft:
		m.pos.Left = clamp(x, 0, m.width-MinSeparation)
		if m.pos.Right-m.pos.Left < MinSeparation {
			m.pos.Right = m.pos.Left + MinSeparation
		}
	case TargetRight:
		m.pos.Right = clamp(x, MinSeparation, m.width)
		if m.pos.Right-m.pos.Left < MinSeparation {
			m.pos.Left = m.pos.Right - MinSeparation
		}
	default:
		return false
	}
	return true
}

// EndDrag releases the marker and returns the final position.
func (m *Markers) EndDrag() Position {
	m.drag = TargetNone
	return m.pos
}

// Resize rescales both markers so they keep covering the same fraction of
// the track.
func (m *Markers) Resize(newWidth float64) {
	if newWidth == m.width {
		return
	}
	if m.width <= 0 {
		m.width = newWidth
		m.pos = Full(newWidth)
		return
	}
	m.pos = ScalePosition(m.pos, m.width, newWidth)
	m.width = newWidth
}

// ScalePosition rescales p from a track of oldWidth to one of newWidth.
func ScalePosition(p Position, oldWidth, newWidth float64) Position {
	if oldWidth <= 0 {
		return Full(newWidth)
	}
	return p.Scale(newWidth / oldWidth).Clamp(newWidth)
}

// Render clears dst and draws the markers with the trimmed-out regions shaded.
func (m *Markers) Render(dst draw.Image) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)
	if m.width <= 0 || b.Dx() == 0 {
		return
	}

	sx := float64(b.Dx()) / m.width
	left := b.Min.X + int(math.Round(m.pos.Left*sx))
	right := b.Min.X + int(math.Round(m.pos.Right*sx))

	shade := image.NewUniform(m.ShadeColor)
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, left, b.Max.Y), shade, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(right, b.Min.Y, b.Max.X, b.Max.Y), shade, image.Point{}, draw.Over)

	line := image.NewUniform(m.MarkerColor)
	draw.Draw(dst, image.Rect(left, b.Min.Y, left+markerWidth, b.Max.Y).Intersect(b), line, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(right-markerWidth, b.Min.Y, right, b.Max.Y).Intersect(b), line, image.Point{}, draw.Over)
}
