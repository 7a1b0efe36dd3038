package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a position in frame space: X is the column, Y the row.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MarshalJSON encodes p as an [x, y] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes an [x, y] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point: want 2 coordinates, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// Course is the ordered path traced from the dominant edge region.
type Course struct {
	Points []Point `json:"points"`
}

// Length returns the polyline length, 0 for fewer than two points.
func (c Course) Length() float64 {
	if len(c.Points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(c.Points); i++ {
		total += c.Points[i-1].Distance(c.Points[i])
	}
	return total
}
