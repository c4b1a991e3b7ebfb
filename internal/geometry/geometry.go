// Package geometry resolves where a watermark is placed on a canvas.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// DefaultMargin is the distance in pixels between a corner-anchored
// watermark and the canvas edges.
const DefaultMargin = 40

var ErrUnknownPosition = errors.New("unknown position")

// Position is the anchor used to place a watermark.
type Position int

const (
	BottomLeft Position = iota
	TopLeft
	BottomRight
	TopRight
	Center
)

var positionNames = [...]string{
	BottomLeft:  "bottom-left",
	TopLeft:     "top-left",
	BottomRight: "bottom-right",
	TopRight:    "top-right",
	Center:      "center",
}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// Valid reports whether p is one of the five anchors.
func (p Position) Valid() bool {
	return p >= 0 && int(p) < len(positionNames)
}

// Positions returns every anchor in display order.
func Positions() []Position {
	return []Position{BottomLeft, TopLeft, BottomRight, TopRight, Center}
}

// ParsePosition accepts the names returned by Position.String.
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if name == s {
			return Position(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// Resolve returns the top-left offset of a mark of size mark on a canvas of
// size canvas. The result is not clamped: a mark larger than the canvas, or
// a margin larger than the canvas, yields offsets outside the canvas which
// the compositor clips.
func Resolve(canvas, mark image.Point, pos Position, margin int) image.Point {
	switch pos {
	case TopLeft:
		return image.Pt(margin, margin)
	case BottomRight:
		return image.Pt(canvas.X-mark.X-margin, canvas.Y-mark.Y-margin)
	case TopRight:
		return image.Pt(canvas.X-mark.X-margin, margin)
	case Center:
		// ties round to even, e.g. 350.5 -> 350
		return image.Pt(
			int(math.RoundToEven(float64(canvas.X)*0.5-float64(mark.X)*0.5)),
			int(math.RoundToEven(float64(canvas.Y)*0.5-float64(mark.Y)*0.5)),
		)
	default:
		return image.Pt(margin, canvas.Y-mark.Y-margin)
	}
}
