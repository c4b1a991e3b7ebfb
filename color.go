package watermark

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses "#rrggbb", "#rgb" or an SVG colour name such as
// "white" or "darkorange".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalidParam, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
