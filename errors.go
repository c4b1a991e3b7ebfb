package watermark

import (
	"errors"

	"github.com/yyyoichi/watermark_batch/internal/collection"
	"github.com/yyyoichi/watermark_batch/internal/export"
	"github.com/yyyoichi/watermark_batch/internal/fonts"
)

var (
	// ErrUnreadableSource marks a source image that cannot be decoded.
	ErrUnreadableSource = collection.ErrUnreadableSource
	// ErrUnknownKey is returned when a key is not in the collection.
	ErrUnknownKey = collection.ErrUnknownKey
	// ErrWriteFailure marks an export that could not be written.
	ErrWriteFailure = export.ErrWriteFailure
	ErrUnknownFont  = fonts.ErrUnknownFont

	ErrWatermarkLoad = errors.New("cannot load watermark")
	// ErrBusy is returned while an import or export is running.
	ErrBusy         = errors.New("engine is busy")
	ErrInvalidParam = errors.New("invalid parameter")
	ErrNoSelection  = errors.New("no image selected")
)
