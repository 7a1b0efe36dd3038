// Command gen-frame writes a synthetic grayscale frame with an elliptical
// ring on a dark background, ready to be fed to edgeskate.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/okian/edgeskate/internal/domain/model"
)

func main() {
	width := flag.Int("width", 96, "frame width")
	height := flag.Int("height", 72, "frame height")
	inner := flag.Float64("inner", 0.6, "inner ring edge, as a fraction of the ellipse")
	intensity := flag.Float64("intensity", 255, "ring intensity")
	out := flag.String("out", "frame.json", "output path")
	flag.Parse()

	frame, err := ringFrame(*width, *height, *inner, *intensity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	data, err := json.Marshal(frame)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode frame:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write frame:", err)
		os.Exit(1)
	}
}

// ringFrame draws the band between an ellipse inscribed in the frame (with a
// small margin) and the same ellipse scaled by inner.
func ringFrame(width, height int, inner, intensity float64) (model.Frame, error) {
	if width < 4 || height < 4 {
		return nil, fmt.Errorf("frame must be at least 4x4, got %dx%d", height, width)
	}
	if inner <= 0 || inner >= 1 {
		return nil, fmt.Errorf("inner must be in (0, 1), got %v", inner)
	}

	frame := model.NewFrame(height, width)
	cx, cy := float64(width-1)/2, float64(height-1)/2
	rx, ry := 0.4*float64(width), 0.4*float64(height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy

			// Ellipse equation: (x/a)^2 + (y/b)^2 = 1
			dist := (dx*dx)/(rx*rx) + (dy*dy)/(ry*ry)
			if dist <= 1.0 && dist >= inner {
				frame[y][x] = intensity
			}
		}
	}
	return frame, nil
}
