package collection

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/yyyoichi/watermark_batch/internal/raster"
)

// Key identifies a source image. It is the cleaned path of the file.
type Key string

func NewKey(path string) Key {
	return Key(filepath.Clean(path))
}

// Path returns the file path the key was made from.
func (k Key) Path() string { return string(k) }

// Rotation is a counter-clockwise quarter turn in degrees: 0, 90, 180 or 270.
type Rotation int

// Next advances by 90 degrees and wraps from 270 to 0.
func (r Rotation) Next() Rotation {
	if r >= 270 {
		return 0
	}
	return r + 90
}

func (r Rotation) Degrees() float64 { return float64(r) }

// Entry is the state kept for one source image.
type Entry struct {
	Key      Key
	Rotation Rotation
	// Thumbnail is the small preview with Rotation applied.
	Thumbnail *image.NRGBA

	base *image.NRGBA
}

func newEntry(key Key, thumb *image.NRGBA) *Entry {
	return &Entry{Key: key, Thumbnail: thumb, base: thumb}
}

func (e *Entry) rotate() {
	e.Rotation = e.Rotation.Next()
	if e.Rotation == 0 {
		e.Thumbnail = e.base
		return
	}
	e.Thumbnail = raster.Rotate(e.base, e.Rotation.Degrees())
}

// ItemError is a failure of a single image within a batch.
type ItemError struct {
	Key Key
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }
