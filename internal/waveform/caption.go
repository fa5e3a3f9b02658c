package waveform

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
)

const (
	captionSize    = 12.0
	captionDPI     = 72.0
	captionPadding = 4
)

// ParseFont loads a TrueType font for captions.
func ParseFont(ttf []byte) (*truetype.Font, error) {
	f, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// Caption stamps text into the top-left corner of dst.
func Caption(dst draw.Image, f *truetype.Font, text string, c color.Color) error {
	if f == nil || text == "" {
		return nil
	}
	b := dst.Bounds()

	ctx := freetype.NewContext()
	ctx.SetFont(f)
	ctx.SetFontSize(captionSize)
	ctx.SetDPI(captionDPI)
	ctx.SetClip(b)
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(c))

	face := truetype.NewFace(f, &truetype.Options{Size: captionSize, DPI: captionDPI})
	ascent := face.Metrics().Ascent.Ceil()

	pt := freetype.Pt(b.Min.X+captionPadding, b.Min.Y+captionPadding+ascent)
	if _, err := ctx.DrawString(text, pt); err != nil {
		return fmt.Errorf("draw caption: %w", err)
	}
	return nil
}
