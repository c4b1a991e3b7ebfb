// Package export writes watermarked copies of a batch of images to a
// directory.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yyyoichi/watermark_batch/internal/collection"
	"github.com/yyyoichi/watermark_batch/internal/raster"
)

var ErrWriteFailure = errors.New("cannot write output image")

// Suffix is appended to the stem of every output file name.
const Suffix = "_watermarked"

// Item is one image to export.
type Item struct {
	Key      collection.Key
	Rotation collection.Rotation
}

// Progress is reported after each item, successful or not.
type Progress struct {
	Completed int
	Total     int
	Key       collection.Key
	Err       error
}

type ProgressSink func(Progress)

// Report lists the outcome of every item of a run.
type Report struct {
	Succeeded []collection.Key
	Failed    []collection.ItemError
}

// Renderer composes the watermark onto src turned by rotation degrees.
type Renderer func(src image.Image, rotation float64) (*image.NRGBA, error)

// Pipeline holds everything a run needs. The fields must not change while
// Run is executing.
type Pipeline struct {
	Render Renderer
	// Open decodes sources. Defaults to raster.Open.
	Open        func(path string) (image.Image, error)
	Background  color.Color
	JPEGQuality int
	Logger      *slog.Logger
}

// OutputPath returns where the export of key is written inside dir.
func OutputPath(dir string, key collection.Key) string {
	base := filepath.Base(key.Path())
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+Suffix+ext)
}

// Run exports items in order into dir. A failing item is recorded and the
// run goes on with the next one. An item whose output name was already
// written by an earlier item of the run fails with ErrWriteFailure instead
// of overwriting it. When ctx is cancelled the remaining items are reported
// as failed with the context error.
func (p *Pipeline) Run(ctx context.Context, items []Item, dir string, sink ProgressSink) Report {
	var report Report
	logger := p.logger()
	total := len(items)
	fail := func(i int, err error) {
		report.Failed = append(report.Failed, collection.ItemError{Key: items[i].Key, Err: err})
		logger.Warn("export failed", "key", items[i].Key, "err", err)
		if sink != nil {
			sink(Progress{Completed: i + 1, Total: total, Key: items[i].Key, Err: err})
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		err = fmt.Errorf("%w: %w", ErrWriteFailure, err)
		for i := range items {
			fail(i, err)
		}
		return report
	}

	written := make(map[string]collection.Key, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			fail(i, err)
			continue
		}
		out := OutputPath(dir, item.Key)
		if prev, ok := written[out]; ok {
			fail(i, fmt.Errorf("%w: %s already written for %s", ErrWriteFailure, out, prev))
			continue
		}
		if err := p.export(item, out); err != nil {
			fail(i, err)
			continue
		}
		written[out] = item.Key
		report.Succeeded = append(report.Succeeded, item.Key)
		logger.Debug("exported", "key", item.Key, "output", out)
		if sink != nil {
			sink(Progress{Completed: i + 1, Total: total, Key: item.Key})
		}
	}
	logger.Info("export finished", "dir", dir, "succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report
}

func (p *Pipeline) export(item Item, out string) error {
	open := p.Open
	if open == nil {
		open = raster.Open
	}
	src, err := open(item.Key.Path())
	if err != nil {
		return fmt.Errorf("%w: %w", collection.ErrUnreadableSource, err)
	}
	img, err := p.Render(src, item.Rotation.Degrees())
	if err != nil {
		return err
	}
	bg := p.Background
	if bg == nil {
		bg = color.Black
	}
	if err := raster.WriteFile(out, raster.Flatten(img, bg), p.JPEGQuality); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
