// Package preprocess normalizes, resizes and denoises raw frames.
package preprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/edgeskate/internal/domain/model"
)

const (
	// flatRange is the sample range below which a frame is treated as constant.
	flatRange = 1e-5
	minSigma  = 0.1
)

// Frame rescales samples to [0,1], resizes to res with nearest-neighbor
// sampling and, when denoiseStrength > 0, applies a Gaussian blur with
// sigma = max(0.1, 2*denoiseStrength). The input is never modified.
func Frame(frame model.Frame, res model.Resolution, denoiseStrength float64) model.Frame {
	resized := Resize(Normalize(frame), res)
	if denoiseStrength > 0 {
		return GaussianBlur(resized, math.Max(minSigma, denoiseStrength*2))
	}
	return resized
}

// Normalize linearly maps the frame's global min/max onto [0,1]. A frame
// whose range is below 1e-5 maps to all zeros.
func Normalize(frame model.Frame) model.Frame {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range frame {
		if len(row) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}

	out := make(model.Frame, len(frame))
	if math.IsInf(lo, 1) || hi-lo < flatRange {
		for y, row := range frame {
			out[y] = make([]float64, len(row))
		}
		return out
	}

	scale := hi - lo
	for y, row := range frame {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			out[y][x] = (v - lo) / scale
		}
	}
	return out
}

// Resize samples frame onto res using nearest-neighbor lookup:
// src = floor(dst * srcDim / dstDim), clamped to the source bounds.
// A source without rows or columns yields an all-zero grid.
func Resize(frame model.Frame, res model.Resolution) model.Frame {
	out := model.NewFrame(res.Height, res.Width)
	srcH, srcW := frame.Rows(), frame.Cols()
	if srcH == 0 || srcW == 0 || res.Height <= 0 || res.Width <= 0 {
		return out
	}

	scaleY := float64(srcH) / float64(res.Height)
	scaleX := float64(srcW) / float64(res.Width)
	for y := range out {
		sy := min(srcH-1, int(float64(y)*scaleY))
		for x := range out[y] {
			sx := min(srcW-1, int(float64(x)*scaleX))
			out[y][x] = frame[sy][sx]
		}
	}
	return out
}

// GaussianKernel returns normalized weights exp(-x²/2σ²) for
// x in [-r, r] with r = max(1, ceil(3σ)).
func GaussianKernel(sigma float64) []float64 {
	radius := max(1, int(math.Ceil(3*sigma)))
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-(x * x) / (2 * (sigma * sigma)))
	}
	norm := 0.0
	for _, w := range kernel {
		norm += w
	}
	for i := range kernel {
		kernel[i] /= norm
	}
	return kernel
}

// GaussianBlur applies a separable Gaussian blur, vertical pass first,
// replicating edge samples at the borders.
func GaussianBlur(frame model.Frame, sigma float64) model.Frame {
	kernel := GaussianKernel(sigma)
	return convolve(convolve(frame, kernel, true), kernel, false)
}

func convolve(frame model.Frame, kernel []float64, vertical bool) model.Frame {
	height, width := frame.Rows(), frame.Cols()
	radius := len(kernel) / 2
	out := model.NewFrame(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			acc := 0.0
			for k, w := range kernel {
				off := k - radius
				if vertical {
					acc += frame[clamp(y+off, height-1)][x] * w
				} else {
					acc += frame[y][clamp(x+off, width-1)] * w
				}
			}
			out[y][x] = acc
		}
	}
	return out
}

func clamp(i, hi int) int {
	return min(hi, max(0, i))
}
