package watermark_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	watermark "github.com/yyyoichi/watermark_batch"
)

func Example_watermark() {
	dir, err := os.MkdirTemp("", "watermark-example")
	if err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	// Create a simple gradient image (400x300 pixels)
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / 400), uint8(y * 255 / 300), 128, 255})
		}
	}
	src := filepath.Join(dir, "photo.png")
	f, err := os.Create(src)
	if err != nil {
		fmt.Printf("Error creating image: %v\n", err)
		return
	}
	if err := png.Encode(f, img); err != nil {
		fmt.Printf("Error encoding image: %v\n", err)
		return
	}
	f.Close()

	// Initialize the engine with default settings
	w, err := watermark.New()
	if err != nil {
		fmt.Printf("Error creating engine: %v\n", err)
		return
	}

	ctx := context.Background()
	res, err := w.AddImages(ctx, []string{src, src})
	if err != nil {
		fmt.Printf("Error adding images: %v\n", err)
		return
	}
	fmt.Printf("added %d, duplicates %d\n", len(res.Added), len(res.Duplicates))

	// Draw white text in the bottom-right corner at half opacity
	if err := w.SetActiveWatermarkText("© 2026", "Go-Bold", color.White); err != nil {
		fmt.Printf("Error setting watermark: %v\n", err)
		return
	}
	_ = w.SetOpacity(50)
	_ = w.SetWatermarkSize(100)
	_ = w.SetPosition(watermark.BottomRight)

	report, err := w.ExportAll(ctx, filepath.Join(dir, "out"), func(p watermark.Progress) {
		fmt.Printf("%d/%d\n", p.Completed, p.Total)
	})
	if err != nil {
		fmt.Printf("Error exporting: %v\n", err)
		return
	}
	fmt.Printf("succeeded %d, failed %d\n", len(report.Succeeded), len(report.Failed))

	_, err = os.Stat(filepath.Join(dir, "out", "photo_watermarked.png"))
	fmt.Println(err == nil)

	// Output:
	// added 1, duplicates 1
	// 1/1
	// succeeded 1, failed 0
	// true
}
