package watermark

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
)

type Option func(*Engine) error

// WithMargin sets the distance in pixels between a corner-placed watermark
// and the image edges. The default is 40.
func WithMargin(px int) Option {
	return func(e *Engine) error {
		if px < 0 {
			return fmt.Errorf("%w: margin %d", ErrInvalidParam, px)
		}
		e.params.Margin = px
		return nil
	}
}

// WithThumbnailSize sets the box thumbnails are fitted into.
// The default is 125x125.
func WithThumbnailSize(width, height int) Option {
	return func(e *Engine) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%w: thumbnail size %dx%d", ErrInvalidParam, width, height)
		}
		e.thumbnail = image.Pt(width, height)
		return nil
	}
}

// WithPreviewSize sets the box PreviewCurrent shrinks its result into.
// The default is 690x690. Zero disables shrinking.
func WithPreviewSize(width, height int) Option {
	return func(e *Engine) error {
		if width < 0 || height < 0 {
			return fmt.Errorf("%w: preview size %dx%d", ErrInvalidParam, width, height)
		}
		e.preview = image.Pt(width, height)
		return nil
	}
}

// WithJPEGQuality sets the quality of exported JPEG files, 1 to 100.
// The default is 95.
func WithJPEGQuality(q int) Option {
	return func(e *Engine) error {
		if q < 1 || q > 100 {
			return fmt.Errorf("%w: jpeg quality %d", ErrInvalidParam, q)
		}
		e.jpegQuality = q
		return nil
	}
}

// WithBackground sets the colour transparent areas are flattened onto
// when exporting. The default is black.
func WithBackground(c color.Color) Option {
	return func(e *Engine) error {
		e.background = c
		return nil
	}
}

// WithFontDir registers every .ttf and .otf file of dir as a font named
// after the file without its extension.
func WithFontDir(dir string) Option {
	return func(e *Engine) error {
		if err := e.fonts.AddDir(dir); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParam, err)
		}
		return nil
	}
}

// WithTextAntialias blends text by glyph coverage instead of painting every
// glyph pixel with the same alpha.
func WithTextAntialias(on bool) Option {
	return func(e *Engine) error {
		e.params.TextAntialias = on
		return nil
	}
}

// WithSourceCache keeps decoded sources in memory so previews and exports
// of the same image decode it once. Entries are dropped when the image is
// removed.
func WithSourceCache() Option {
	return func(e *Engine) error {
		e.useCache = true
		return nil
	}
}

// WithLogger sets the logger. By default the engine logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}
