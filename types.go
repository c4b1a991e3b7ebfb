package watermark

import (
	"image"

	"github.com/yyyoichi/watermark_batch/internal/collection"
	"github.com/yyyoichi/watermark_batch/internal/compose"
	"github.com/yyyoichi/watermark_batch/internal/export"
	"github.com/yyyoichi/watermark_batch/internal/geometry"
)

type (
	// Key identifies an image in the collection. It is the cleaned file path.
	Key = collection.Key
	// Rotation is a counter-clockwise quarter turn in degrees.
	Rotation  = collection.Rotation
	AddResult = collection.AddResult
	ItemError = collection.ItemError

	Position = geometry.Position

	// Mark is the active watermark: NoMark, ImageMark or TextMark.
	Mark      = compose.Mark
	NoMark    = compose.NoMark
	ImageMark = compose.ImageMark
	TextMark  = compose.TextMark
	Params    = compose.Params

	Progress     = export.Progress
	ProgressSink = export.ProgressSink
	Report       = export.Report
)

const (
	BottomLeft  = geometry.BottomLeft
	TopLeft     = geometry.TopLeft
	BottomRight = geometry.BottomRight
	TopRight    = geometry.TopRight
	Center      = geometry.Center
)

const (
	MinBoxSize = compose.MinBoxSize
	MaxBoxSize = compose.MaxBoxSize
)

// ParsePosition parses the names returned by Position.String, such as
// "bottom-left".
func ParsePosition(s string) (Position, error) { return geometry.ParsePosition(s) }

// Image describes one entry of the collection.
type Image struct {
	Key      Key
	Rotation Rotation
	// Thumbnail is shared with the engine and must not be modified.
	Thumbnail *image.NRGBA
}
