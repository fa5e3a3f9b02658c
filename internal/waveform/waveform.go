package waveform

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/PixPMusic/gopher-pads/internal/audio"
	"github.com/viterin/vek/vek32"
)

// DefaultColor is the waveform stroke used when none is configured.
var DefaultColor = color.RGBA{R: 0x83, G: 0xE8, B: 0x3E, A: 0xff}

// Column is the sample range covered by one pixel column.
type Column struct {
	Min, Max float32
}

// Envelope reduces samples to one min/max pair per column. Every sample
// belongs to exactly one column; columns narrower than a sample reuse the
// nearest one.
func Envelope(samples []float32, columns int) []Column {
	if columns <= 0 || len(samples) == 0 {
		return nil
	}
	out := make([]Column, columns)
	step := float64(len(samples)) / float64(columns)
	for i := range out {
		lo := int(float64(i) * step)
		hi := int(float64(i+1) * step)
		if lo >= len(samples) {
			lo = len(samples) - 1
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		slice := samples[lo:hi]
		out[i] = Column{Min: vek32.Min(slice), Max: vek32.Max(slice)}
	}
	return out
}

// Render clears dst and draws the first channel of buf as a min/max
// envelope, one vertical stroke per column, centered vertically. An empty
// buffer leaves dst cleared.
func Render(buf *audio.Buffer, dst draw.Image, c color.Color) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)
	if buf.Empty() || b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	amp := float64(b.Dy()) / 2
	mid := float64(b.Min.Y) + amp
	src := image.NewUniform(c)
	for x, col := range Envelope(buf.Channels[0], b.Dx()) {
		top := int(math.Floor(mid - float64(clampUnit(col.Max))*amp))
		bottom := int(math.Ceil(mid - float64(clampUnit(col.Min))*amp))
		if bottom <= top {
			bottom = top + 1
		}
		r := image.Rect(b.Min.X+x, top, b.Min.X+x+1, bottom).Intersect(b)
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	}
}

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
