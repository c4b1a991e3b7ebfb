// Command watermark stamps an image or a line of text onto every input
// image and writes the results to an output directory.
//
//	watermark -o out --text "© 2026" --position bottom-right photos/*.jpg
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	flag "github.com/spf13/pflag"

	watermark "github.com/yyyoichi/watermark_batch"
	"github.com/yyyoichi/watermark_batch/internal/raster"
)

func main() {
	out := flag.StringP("out", "o", "watermarked", "output directory")
	markImage := flag.StringP("image", "i", "", "watermark image file")
	text := flag.StringP("text", "t", "", "watermark text (ignored with --image)")
	font := flag.StringP("font", "f", "", "font name for --text, see --list-fonts")
	fontDir := flag.String("font-dir", "", "directory of .ttf/.otf files to register as fonts")
	textColor := flag.StringP("color", "c", "white", "text colour, #rrggbb or a colour name")
	opacity := flag.IntP("opacity", "a", 100, "watermark opacity in percent (0-100)")
	size := flag.IntP("size", "s", 300, fmt.Sprintf("watermark box size in pixels (%d-%d)", watermark.MinBoxSize, watermark.MaxBoxSize))
	position := flag.StringP("position", "p", watermark.BottomLeft.String(), "bottom-left, top-left, bottom-right, top-right or center")
	margin := flag.IntP("margin", "m", 40, "distance from the edges in pixels")
	turns := flag.IntP("rotate", "r", 0, "quarter turns counter-clockwise applied to every image")
	quality := flag.IntP("quality", "q", 95, "JPEG quality (1-100)")
	background := flag.String("background", "black", "colour transparent areas are flattened onto")
	antialias := flag.Bool("antialias", false, "blend text by glyph coverage")
	listFonts := flag.Bool("list-fonts", false, "print the available fonts and exit")
	verbose := flag.BoolP("verbose", "v", false, "log every image")
	help := flag.BoolP("help", "h", false, "display help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] image|dir ...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	bg, err := watermark.ParseColor(*background)
	if err != nil {
		fatal(logger, "bad --background", err)
	}
	opts := []watermark.Option{
		watermark.WithLogger(logger),
		watermark.WithMargin(*margin),
		watermark.WithJPEGQuality(*quality),
		watermark.WithBackground(bg),
		watermark.WithTextAntialias(*antialias),
	}
	if *fontDir != "" {
		opts = append(opts, watermark.WithFontDir(*fontDir))
	}
	e, err := watermark.New(opts...)
	if err != nil {
		fatal(logger, "cannot start", err)
	}
	if *listFonts {
		for _, name := range e.Fonts() {
			fmt.Println(name)
		}
		return
	}

	pos, err := watermark.ParsePosition(*position)
	if err != nil {
		fatal(logger, "bad --position", err)
	}
	if err := errors.Join(e.SetOpacity(*opacity), e.SetWatermarkSize(*size), e.SetPosition(pos)); err != nil {
		fatal(logger, "bad parameter", err)
	}
	switch {
	case *markImage != "":
		err = e.SetActiveWatermarkImage(*markImage)
	case *text != "":
		c, cerr := watermark.ParseColor(*textColor)
		if cerr != nil {
			fatal(logger, "bad --color", cerr)
		}
		err = e.SetActiveWatermarkText(*text, *font, c)
	default:
		logger.Warn("no --image or --text given, images are copied without a watermark")
	}
	if err != nil {
		fatal(logger, "cannot load watermark", err)
	}

	paths, err := inputs(flag.Args())
	if err != nil {
		fatal(logger, "cannot list inputs", err)
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	added, err := e.AddImages(ctx, paths)
	if err != nil {
		fatal(logger, "cannot add images", err)
	}
	for _, img := range e.Images() {
		if err := e.SelectImage(img.Key); err != nil {
			fatal(logger, "cannot select image", err)
		}
		for range ((*turns % 4) + 4) % 4 {
			if _, err := e.RotateCurrent(); err != nil {
				fatal(logger, "cannot rotate image", err)
			}
		}
	}

	report, err := e.ExportAll(ctx, *out, func(p watermark.Progress) {
		logger.Debug("progress", "done", p.Completed, "total", p.Total)
	})
	if err != nil {
		fatal(logger, "export aborted", err)
	}
	if code := exitCode(os.Stderr, added, report); code != 0 {
		os.Exit(code)
	}
}

// exitCode prints every image that could not be added or exported to w and
// returns 1 if there was any.
func exitCode(w io.Writer, added watermark.AddResult, report watermark.Report) int {
	failed := append(slices.Clone(added.Failed), report.Failed...)
	for _, f := range failed {
		fmt.Fprintln(w, f.Error())
	}
	if len(failed) > 0 {
		return 1
	}
	return 0
}

// inputs expands directories into the image files they contain.
func inputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// unreadable files are reported by the engine
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && raster.IsSupported(entry.Name()) {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
