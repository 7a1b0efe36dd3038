// Package model contains domain models passed between pipeline stages.
package model

import (
	"errors"
	"fmt"
)

// ErrInvalidFrame reports a malformed input grid.
var ErrInvalidFrame = errors.New("invalid frame")

// Frame is a rectangular grid of real-valued samples indexed [row][col].
type Frame [][]float64

// EdgeMap is a Frame whose cells are exactly 0 or 1.
type EdgeMap = Frame

// Resolution is a target grid size.
type Resolution struct {
	Height int `json:"height" koanf:"height"`
	Width  int `json:"width" koanf:"width"`
}

// NewFrame returns an all-zero frame of the given size.
func NewFrame(rows, cols int) Frame {
	rows = max(rows, 0)
	cols = max(cols, 0)
	f := make(Frame, rows)
	for y := range f {
		f[y] = make([]float64, cols)
	}
	return f
}

// Rows returns the number of rows.
func (f Frame) Rows() int { return len(f) }

// Cols returns the length of the first row, or 0 for an empty frame.
func (f Frame) Cols() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	for y, row := range f {
		out[y] = append([]float64(nil), row...)
	}
	return out
}

// Validate checks that f has at least one row and that all rows share the
// same positive length.
func (f Frame) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidFrame)
	}
	width := len(f[0])
	if width == 0 {
		return fmt.Errorf("%w: empty rows", ErrInvalidFrame)
	}
	for y, row := range f {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d samples, want %d", ErrInvalidFrame, y, len(row), width)
		}
	}
	return nil
}

// Validate checks that both dimensions are positive.
func (r Resolution) Validate() error {
	if r.Height <= 0 || r.Width <= 0 {
		return fmt.Errorf("resolution %s must be positive", r)
	}
	return nil
}

// String formats r as HxW.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Height, r.Width)
}
