package compose

import (
	"image"
	"image/color"

	"github.com/yyyoichi/watermark_batch/internal/geometry"
)

const (
	DefaultOpacity = 100
	DefaultBoxSize = 300
	MinBoxSize     = 100
	MaxBoxSize     = 700
)

// Mark is the active watermark: NoMark, ImageMark or TextMark.
type Mark interface {
	isMark()
}

// NoMark renders nothing.
type NoMark struct{}

// ImageMark pastes a raster. Path is informational.
type ImageMark struct {
	Source image.Image
	Path   string
}

// TextMark renders Text with the font identified by Font in Color.
type TextMark struct {
	Text  string
	Font  string
	Color color.RGBA
}

func (NoMark) isMark()    {}
func (ImageMark) isMark() {}
func (TextMark) isMark()  {}

// IsEmpty reports whether m draws nothing.
func IsEmpty(m Mark) bool {
	switch m := m.(type) {
	case ImageMark:
		return m.Source == nil
	case TextMark:
		return m.Text == ""
	}
	return true
}

// Params are the composition settings shared by every image.
type Params struct {
	// Opacity of the watermark in percent, 0 to 100.
	Opacity int
	// BoxSize is the side of the square an image mark is fitted into.
	// Text is rendered at half of it in points.
	BoxSize  int
	Position geometry.Position
	Margin   int
	// TextAntialias modulates text alpha by glyph coverage instead of
	// painting every glyph pixel with the same alpha.
	TextAntialias bool
}

func DefaultParams() Params {
	return Params{
		Opacity:  DefaultOpacity,
		BoxSize:  DefaultBoxSize,
		Position: geometry.BottomLeft,
		Margin:   geometry.DefaultMargin,
	}
}
