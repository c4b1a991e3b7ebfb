// Package compose renders a watermark onto a source image.
package compose

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/yyyoichi/watermark_batch/internal/geometry"
	"github.com/yyyoichi/watermark_batch/internal/raster"
)

// FontSource creates font faces for text marks.
type FontSource interface {
	Face(name string, size float64) (font.Face, error)
}

// Compose returns src rotated counter-clockwise by rotation degrees with
// mark blended on top. The result keeps an alpha channel; areas uncovered
// by the rotated source are transparent. src is never modified.
//
// Process:
//  1. Rotates the source, expanding the canvas to fit.
//  2. Fits an image mark into the box, scales its alpha by the opacity and
//     blends it over the canvas.
//  3. Or renders a text mark with a uniform alpha on a transparent layer
//     and blends the layer over the canvas.
func Compose(src image.Image, rotation float64, mark Mark, p Params, fonts FontSource) (*image.NRGBA, error) {
	canvas := raster.Rotate(src, rotation)
	if IsEmpty(mark) {
		return canvas, nil
	}
	switch m := mark.(type) {
	case ImageMark:
		drawImage(canvas, m.Source, p)
	case TextMark:
		if err := drawText(canvas, m, p, fonts); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func drawImage(canvas *image.NRGBA, src image.Image, p Params) {
	mark := raster.Fit(src, p.BoxSize, p.BoxSize)
	raster.ScaleAlpha(mark, p.Opacity)
	size := mark.Rect.Size()
	at := geometry.Resolve(canvas.Rect.Size(), size, p.Position, p.Margin)
	draw.Draw(canvas, image.Rectangle{Min: at, Max: at.Add(size)}, mark, image.Point{}, draw.Over)
}

func drawText(canvas *image.NRGBA, m TextMark, p Params, fonts FontSource) error {
	text := singleLine(norm.NFC.String(m.Text))
	face, err := fonts.Face(m.Font, math.Floor(float64(p.BoxSize)*0.5))
	if err != nil {
		return fmt.Errorf("text face: %w", err)
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, text)
	size := image.Pt((bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil())
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	at := geometry.Resolve(canvas.Rect.Size(), size, p.Position, p.Margin)

	// the dot is shifted so the tight box starts at the resolved offset
	coverage := image.NewAlpha(canvas.Rect)
	d := font.Drawer{
		Dst:  coverage,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(at.X) - bounds.Min.X, Y: fixed.I(at.Y) - bounds.Min.Y},
	}
	d.DrawString(text)

	area := image.Rectangle{Min: at, Max: at.Add(size)}.Inset(-1).Intersect(canvas.Rect)
	if area.Empty() {
		return nil
	}
	layer := textLayer(coverage, area, m.Color, p)
	draw.Draw(canvas, area, layer, area.Min, draw.Over)
	return nil
}

// singleLine turns line breaks and tabs into spaces and drops other
// control characters. Text marks are drawn on one line.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case !unicode.IsControl(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)
}

// textLayer colours the covered pixels of area. Without antialiasing a
// pixel belongs to a glyph when it is at least half covered and gets the
// same alpha as every other glyph pixel.
func textLayer(coverage *image.Alpha, area image.Rectangle, c color.RGBA, p Params) *image.NRGBA {
	alpha := uint8(math.Round(255 * float64(p.Opacity) / 100))
	layer := image.NewNRGBA(coverage.Rect)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			cov := coverage.AlphaAt(x, y).A
			var a uint8
			switch {
			case p.TextAntialias:
				a = uint8((int(cov)*int(alpha) + 127) / 255)
			case cov >= 0x80:
				a = alpha
			}
			if a == 0 {
				continue
			}
			layer.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
		}
	}
	return layer
}
