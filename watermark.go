// Package watermark applies a visible watermark, an image or a line of
// text, to a collection of images, previews the result for the selected
// image and exports every watermarked image to a directory.
package watermark

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/yyyoichi/watermark_batch/internal/cache"
	"github.com/yyyoichi/watermark_batch/internal/collection"
	"github.com/yyyoichi/watermark_batch/internal/compose"
	"github.com/yyyoichi/watermark_batch/internal/export"
	"github.com/yyyoichi/watermark_batch/internal/fonts"
	"github.com/yyyoichi/watermark_batch/internal/raster"
)

// Engine holds the image collection, the active watermark and the
// composition parameters. All methods are safe for concurrent use; imports
// and exports run on their own goroutine and work on a snapshot taken when
// they start.
type Engine struct {
	mu     sync.Mutex
	store  *collection.Store
	params compose.Params
	mark   compose.Mark
	// batch is the name of the running import or export, or "".
	batch string

	fonts  *fonts.Registry
	cache  *cache.Cache
	logger *slog.Logger

	thumbnail   image.Point
	preview     image.Point
	jpegQuality int
	background  color.Color
	useCache    bool
}

const (
	batchAdd    = "add"
	batchExport = "export"
)

// DefaultPreviewSize is the box previews are shrunk into.
var DefaultPreviewSize = image.Pt(690, 690)

// New creates an engine with an empty collection and no watermark.
// For default values, refer to the init function.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		params: compose.DefaultParams(),
		mark:   compose.NoMark{},
		fonts:  fonts.NewRegistry(),
	}
	if err := e.init(opts...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) init(opts ...Option) error {
	e.preview = image.Pt(-1, -1)
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return err
		}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.preview.X < 0 {
		e.preview = DefaultPreviewSize
	}
	if e.jpegQuality == 0 {
		e.jpegQuality = raster.DefaultJPEGQuality
	}
	if e.background == nil {
		e.background = color.Black
	}
	if e.useCache {
		e.cache = cache.New()
	}
	e.store = collection.New(e.thumbnail)
	return nil
}

// AddImages adds the images at paths in order and waits for them to load.
// Paths already in the collection are reported as duplicates and
// unreadable files as failures; neither stops the others.
func (e *Engine) AddImages(ctx context.Context, paths []string) (AddResult, error) {
	job, err := e.StartAddImages(ctx, paths)
	if err != nil {
		return AddResult{}, err
	}
	return job.Wait(ctx)
}

// StartAddImages loads the images at paths on a new goroutine. It fails
// with ErrBusy while another import or export runs.
func (e *Engine) StartAddImages(ctx context.Context, paths []string) (*Job[AddResult], error) {
	e.mu.Lock()
	if err := e.begin(batchAdd); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	keys, res := e.store.Plan(paths)
	box := e.store.ThumbnailSize()
	e.mu.Unlock()

	job := newJob[AddResult]()
	go func() {
		loaded := collection.Load(ctx, keys, box)

		e.mu.Lock()
		e.store.Insert(loaded, &res)
		e.batch = ""
		e.mu.Unlock()

		for _, f := range res.Failed {
			e.logger.Warn("cannot add image", "key", f.Key, "err", f.Err)
		}
		e.logger.Info("images added", "added", len(res.Added), "duplicates", len(res.Duplicates), "failed", len(res.Failed))
		job.finish(res)
	}()
	return job, nil
}

// RemoveCurrent removes the selected image and returns the new selection.
// ok is false when the collection became empty.
func (e *Engine) RemoveCurrent() (next Key, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.batch == batchExport {
		return "", false, fmt.Errorf("%w: export running", ErrBusy)
	}
	key, ok := e.store.Current()
	if !ok {
		return "", false, ErrNoSelection
	}
	if err := e.store.Remove(key); err != nil {
		return "", false, err
	}
	if e.cache != nil {
		e.cache.Delete(key.Path())
	}
	e.logger.Debug("image removed", "key", key)
	next, ok = e.store.Current()
	return next, ok, nil
}

// ClearAll removes every image.
func (e *Engine) ClearAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.batch == batchExport {
		return fmt.Errorf("%w: export running", ErrBusy)
	}
	e.store.Clear()
	if e.cache != nil {
		e.cache.Clear()
	}
	return nil
}

// RotateCurrent turns the selected image a further 90 degrees
// counter-clockwise and returns its rotation.
func (e *Engine) RotateCurrent() (Rotation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key, ok := e.store.Current()
	if !ok {
		return 0, ErrNoSelection
	}
	return e.store.Rotate(key)
}

// SelectImage makes key the selected image.
func (e *Engine) SelectImage(key Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.store.Select(key)
	return err
}

// SetActiveWatermarkImage decodes the image at path and makes it the
// watermark. On failure the active watermark is left unchanged.
func (e *Engine) SetActiveWatermarkImage(path string) error {
	img, err := raster.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatermarkLoad, err)
	}
	mark := compose.ImageMark{Source: raster.ToNRGBA(img), Path: path}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mark = mark
	return nil
}

// SetActiveWatermarkText makes text, drawn with the named font in c, the
// watermark. An empty font name selects the default font. The alpha of c
// is ignored; use SetOpacity. A nil colour is black.
func (e *Engine) SetActiveWatermarkText(text, font string, c color.Color) error {
	if font == "" {
		font = fonts.Default
	}
	face, err := e.fonts.Face(font, compose.MinBoxSize/2)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatermarkLoad, err)
	}
	_ = face.Close()
	if c == nil {
		c = color.Black
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	mark := compose.TextMark{Text: text, Font: font, Color: color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xff}}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.mark = mark
	return nil
}

// ClearWatermark deactivates the watermark.
func (e *Engine) ClearWatermark() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mark = compose.NoMark{}
}

// ActiveWatermark returns the watermark applied by previews and exports.
func (e *Engine) ActiveWatermark() Mark {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mark
}

// SetOpacity sets the watermark opacity in percent, 0 to 100.
func (e *Engine) SetOpacity(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: opacity %d", ErrInvalidParam, percent)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Opacity = percent
	return nil
}

// SetWatermarkSize sets the side of the box an image watermark is fitted
// into, MinBoxSize to MaxBoxSize. Text is drawn at half this size.
func (e *Engine) SetWatermarkSize(px int) error {
	if px < compose.MinBoxSize || px > compose.MaxBoxSize {
		return fmt.Errorf("%w: size %d", ErrInvalidParam, px)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.BoxSize = px
	return nil
}

func (e *Engine) SetPosition(pos Position) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: position %d", ErrInvalidParam, pos)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.Position = pos
	return nil
}

func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Current returns the selected key, or false when the collection is empty.
func (e *Engine) Current() (Key, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Current()
}

// Images lists the collection in insertion order.
func (e *Engine) Images() []Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	images := make([]Image, 0, e.store.Len())
	for key, entry := range e.store.All() {
		images = append(images, Image{Key: key, Rotation: entry.Rotation, Thumbnail: entry.Thumbnail})
	}
	return images
}

// Fonts lists the names accepted by SetActiveWatermarkText.
func (e *Engine) Fonts() []string {
	return e.fonts.Names()
}

// PreviewCurrent composes the watermark onto the selected image at full
// resolution and shrinks the result into the preview box.
func (e *Engine) PreviewCurrent(ctx context.Context) (*image.NRGBA, error) {
	e.mu.Lock()
	key, ok := e.store.Current()
	if !ok {
		e.mu.Unlock()
		return nil, ErrNoSelection
	}
	entry, _ := e.store.Get(key)
	rotation := entry.Rotation
	render := e.renderer()
	e.mu.Unlock()

	src, err := e.open(key.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableSource, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := render(src, rotation.Degrees())
	if err != nil {
		return nil, err
	}
	if e.preview.X > 0 && e.preview.Y > 0 {
		img = raster.Fit(img, e.preview.X, e.preview.Y)
	}
	return img, nil
}

// ExportAll writes every image, watermarked, to dir and waits for the
// export to finish. See StartExport.
func (e *Engine) ExportAll(ctx context.Context, dir string, sink ProgressSink) (Report, error) {
	job, err := e.StartExport(ctx, dir, sink)
	if err != nil {
		return Report{}, err
	}
	return job.Wait(ctx)
}

// StartExport writes every image, watermarked, to dir on a new goroutine.
// The output of a.jpg is dir/a_watermarked.jpg. The watermark and
// parameters in effect now are used for the whole export. sink, if not
// nil, is called from the export goroutine after each image.
//
// While the export runs RemoveCurrent and ClearAll fail with ErrBusy.
func (e *Engine) StartExport(ctx context.Context, dir string, sink ProgressSink) (*Job[Report], error) {
	e.mu.Lock()
	if err := e.begin(batchExport); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	items := make([]export.Item, 0, e.store.Len())
	for key, entry := range e.store.All() {
		items = append(items, export.Item{Key: key, Rotation: entry.Rotation})
	}
	p := &export.Pipeline{
		Render:      e.renderer(),
		Open:        e.open,
		Background:  e.background,
		JPEGQuality: e.jpegQuality,
		Logger:      e.logger,
	}
	e.mu.Unlock()

	job := newJob[Report]()
	go func() {
		report := p.Run(ctx, items, dir, sink)

		e.mu.Lock()
		e.batch = ""
		e.mu.Unlock()
		job.finish(report)
	}()
	return job, nil
}

// begin marks a batch as running. e.mu must be held.
func (e *Engine) begin(name string) error {
	if e.batch != "" {
		return fmt.Errorf("%w: %s running", ErrBusy, e.batch)
	}
	e.batch = name
	return nil
}

// renderer snapshots the watermark and parameters. e.mu must be held.
func (e *Engine) renderer() export.Renderer {
	mark, params := e.mark, e.params
	return func(src image.Image, rotation float64) (*image.NRGBA, error) {
		return compose.Compose(src, rotation, mark, params, e.fonts)
	}
}

func (e *Engine) open(path string) (image.Image, error) {
	if e.cache != nil {
		return e.cache.Open(path)
	}
	return raster.Open(path)
}
