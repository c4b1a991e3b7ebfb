package raster

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rotate turns src counter-clockwise by degrees and grows the output so the
// whole rotated image fits. Pixels outside the rotated source are fully
// transparent. Sampling is nearest-pixel, which is exact for quarter turns.
func Rotate(src image.Image, degrees float64) *image.NRGBA {
	in := ToNRGBA(src)
	deg := math.Mod(degrees, 360)
	if deg < 0 {
		deg += 360
	}
	if deg == 0 {
		return in
	}

	sin, cos := math.Sincos(deg * math.Pi / 180)
	sin, cos = snap(sin), snap(cos)

	w, h := in.Rect.Dx(), in.Rect.Dy()
	fw, fh := float64(w), float64(h)
	nw := int(math.Ceil(math.Abs(fw*cos) + math.Abs(fh*sin) - 1e-9))
	nh := int(math.Ceil(math.Abs(fw*sin) + math.Abs(fh*cos) - 1e-9))

	// source -> destination, y axis pointing down
	fwd := mat.NewDense(2, 2, []float64{
		cos, sin,
		-sin, cos,
	})
	var inv mat.Dense
	if err := inv.Inverse(fwd); err != nil {
		return in
	}
	a, b := inv.At(0, 0), inv.At(0, 1)
	c, d := inv.At(1, 0), inv.At(1, 1)

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	cx, cy := fw/2, fh/2
	ncx, ncy := float64(nw)/2, float64(nh)/2
	for y := range nh {
		py := float64(y) + 0.5 - ncy
		for x := range nw {
			px := float64(x) + 0.5 - ncx
			sx := int(math.Floor(a*px + b*py + cx))
			sy := int(math.Floor(c*px + d*py + cy))
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			di := dst.PixOffset(x, y)
			si := in.PixOffset(sx, sy)
			copy(dst.Pix[di:di+4:di+4], in.Pix[si:si+4:si+4])
		}
	}
	return dst
}

// snap removes the floating point noise of sin/cos at quarter turns.
func snap(v float64) float64 {
	const eps = 1e-12
	switch {
	case math.Abs(v) < eps:
		return 0
	case math.Abs(v-1) < eps:
		return 1
	case math.Abs(v+1) < eps:
		return -1
	}
	return v
}
