// Package raster holds the pixel-level building blocks used by the
// compositor: conversion, rotation, fitting and flattening.
package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToNRGBA copies src into a new NRGBA image whose bounds start at (0,0).
// Images without an alpha channel come out fully opaque.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Clone returns a copy of src that shares no pixel memory with it.
func Clone(src *image.NRGBA) *image.NRGBA {
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}

// Fit scales src down so that it fits in maxW x maxH, keeping the aspect
// ratio. Images that already fit are returned at their own size.
func Fit(src image.Image, maxW, maxH int) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH || w == 0 || h == 0 {
		return ToNRGBA(src)
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Flatten composites src over an opaque background and returns an image
// without transparency, suitable for formats that carry no alpha.
func Flatten(src image.Image, bg color.Color) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	r, g, bl, _ := bg.RGBA()
	opaque := color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(bl), A: 0xffff}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opaque), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// ScaleAlpha multiplies every alpha value of img by percent/100 in place.
func ScaleAlpha(img *image.NRGBA, percent int) {
	if percent >= 100 {
		return
	}
	if percent < 0 {
		percent = 0
	}
	for y := range img.Rect.Dy() {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			row[i] = uint8((int(row[i])*percent + 50) / 100)
		}
	}
}
