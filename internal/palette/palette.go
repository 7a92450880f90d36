// Package palette turns quantized network weights into heatmap colors.
package palette

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Curve selects the saturation curve used to map weight magnitude to
// color intensity.
type Curve uint8

const (
	// LinearSaturating is 1 - exp(-|w|/128) over a dark gray baseline.
	LinearSaturating Curve = iota
	// SqrtSaturating is sqrt(1 - exp(-|w|/256)) over a black baseline. The
	// square root lifts small weights so sparse layers stay readable.
	SqrtSaturating
)

var (
	warm = [3]float64{255, 10, 20}
	cool = [3]float64{10, 80, 255}
)

// String returns the curve name as accepted by ParseCurve.
func (c Curve) String() string {
	switch c {
	case LinearSaturating:
		return "linear"
	case SqrtSaturating:
		return "sqrt"
	default:
		return fmt.Sprintf("Curve(%d)", uint8(c))
	}
}

// ParseCurve parses a curve name.
func ParseCurve(s string) (Curve, error) {
	switch s {
	case "linear":
		return LinearSaturating, nil
	case "sqrt":
		return SqrtSaturating, nil
	default:
		return 0, fmt.Errorf("unknown color curve %q", s)
	}
}

func (c Curve) params() (scale, baseline float64) {
	if c == SqrtSaturating {
		return 256, 0
	}
	return 128, 10
}

// Saturation returns the blend factor in [0, 1] for a weight. It depends
// only on |w|, so w and -w saturate equally.
func Saturation(w int16, c Curve) float64 {
	scale, _ := c.params()
	t := 1 - math.Exp(-math.Abs(float64(w))/scale)
	if c == SqrtSaturating {
		t = math.Sqrt(t)
	}
	return t
}

// Baseline returns the color of a zero weight.
func Baseline(c Curve) color.RGBA {
	_, b := c.params()
	v := uint8(b)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// WeightToColor maps a weight to an opaque color: positive weights blend
// toward red, negative toward blue. Channels are truncated, not rounded.
func WeightToColor(w int16, c Curve) color.RGBA {
	if w == 0 {
		return Baseline(c)
	}
	target := warm
	if w < 0 {
		target = cool
	}
	t := Saturation(w, c)
	_, base := c.params()
	return color.RGBA{
		R: lerp(base, target[0], t),
		G: lerp(base, target[1], t),
		B: lerp(base, target[2], t),
		A: 255,
	}
}

// lerp stays within [a, b] for t in [0, 1], so the uint8 conversion never
// overflows.
func lerp(a, b, t float64) uint8 {
	return uint8(a + (b-a)*t)
}

// Hex formats a color as #rrggbb.
func Hex(c color.RGBA) string {
	col, _ := colorful.MakeColor(c)
	return col.Hex()
}
