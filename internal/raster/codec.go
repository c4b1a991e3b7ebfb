package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when writing JPEG files.
const DefaultJPEGQuality = 95

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Open decodes the image stored at path.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Thumbnail shrinks img into a w x h box, keeping the aspect ratio.
func Thumbnail(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return ToNRGBA(img)
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

// IsSupported reports whether images named like path can be written.
func IsSupported(path string) bool {
	_, err := imaging.FormatFromFilename(path)
	return err == nil
}

// Encode writes img to w in the format implied by the extension of name.
func Encode(w io.Writer, img image.Image, name string, jpegQuality int) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality))
}

// WriteFile encodes img into path. The data is written to a temporary file
// in the same directory first and renamed into place, so a failed write
// never leaves a truncated file behind.
func WriteFile(path string, img image.Image, jpegQuality int) (err error) {
	if !IsSupported(path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wm-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, img, path, jpegQuality); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
