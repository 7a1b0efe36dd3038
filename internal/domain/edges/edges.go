// Package edges turns a preprocessed frame into a binary edge map.
package edges

import (
	"math"

	"github.com/okian/edgeskate/internal/domain/model"
)

// Sobel-style kernels indexed [ky][kx].
var (
	kernelX = [3][3]float64{{1, 0, -1}, {2, 0, -2}, {1, 0, -1}}
	kernelY = [3][3]float64{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}}
)

// Magnitude returns the per-pixel gradient magnitude, sampling borders by
// clamping indices into the grid.
func Magnitude(frame model.Frame) model.Frame {
	height, width := frame.Rows(), frame.Cols()
	out := model.NewFrame(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := apply(frame, &kernelX, x, y)
			gy := apply(frame, &kernelY, x, y)
			out[y][x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return out
}

// Detect marks a cell 1 when its magnitude, normalized by the frame
// maximum, is at least threshold. A uniform frame yields an all-zero map.
func Detect(frame model.Frame, threshold float64) model.EdgeMap {
	mag := Magnitude(frame)

	peak := 0.0
	for _, row := range mag {
		for _, v := range row {
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 {
		peak = 1
	}

	for _, row := range mag {
		for x, v := range row {
			if v/peak >= threshold {
				row[x] = 1
			} else {
				row[x] = 0
			}
		}
	}
	return mag
}

func apply(frame model.Frame, kernel *[3][3]float64, x, y int) float64 {
	height, width := frame.Rows(), frame.Cols()
	acc := 0.0
	for ky := 0; ky < 3; ky++ {
		sy := min(height-1, max(0, y+ky-1))
		for kx := 0; kx < 3; kx++ {
			sx := min(width-1, max(0, x+kx-1))
			acc += frame[sy][sx] * kernel[ky][kx]
		}
	}
	return acc
}
