package tui

import (
	"math"
	"strings"

	"github.com/njchilds90/diffcalc"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the y values of points as a row of block characters,
// resampled to width columns.
func Sparkline(points []diffcalc.XY, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if width > len(points) {
		width = len(points)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Y)
		hi = math.Max(hi, p.Y)
	}

	var sb strings.Builder
	top := len(sparkBlocks) - 1
	for col := 0; col < width; col++ {
		y := points[col*len(points)/width].Y
		level := top / 2
		if hi > lo {
			level = int(math.Round((y - lo) / (hi - lo) * float64(top)))
		}
		sb.WriteRune(sparkBlocks[level])
	}
	return sb.String()
}
