// Package render draws ASCII overlays of frames and ridden paths.
package render

import (
	"math"
	"strings"

	"github.com/okian/edgeskate/internal/domain/model"
)

// Ramp maps intensity 0..1 onto characters, darkest first.
const Ramp = " .:-=+*#%@"

// Rider marks path cells.
const Rider = 'S'

// Overlay renders frame as ASCII art and marks every path point, rounded
// to the nearest cell and clamped into the grid, with Rider.
func Overlay(frame model.Frame, path []model.Point) string {
	height, width := frame.Rows(), frame.Cols()
	display := make([][]byte, height)
	for y, row := range frame {
		display[y] = make([]byte, len(row))
		for x, v := range row {
			display[y][x] = Ramp[intensityIndex(v)]
		}
	}

	if height > 0 && width > 0 {
		for _, p := range path {
			x := clamp(int(math.RoundToEven(p.X)), width-1)
			y := clamp(int(math.RoundToEven(p.Y)), height-1)
			display[y][x] = Rider
		}
	}

	var b strings.Builder
	b.Grow(height * (width + 1))
	for y, row := range display {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.Write(row)
	}
	return b.String()
}

func intensityIndex(v float64) int {
	last := len(Ramp) - 1
	v = math.Max(0, math.Min(1, v))
	return min(int(v*float64(last)), last)
}

func clamp(i, hi int) int {
	return min(hi, max(0, i))
}
