// Package physics simulates a skateboard riding a course.
package physics

import (
	"math"

	"github.com/okian/edgeskate/internal/domain/model"
)

// Velocity integration constants.
const (
	MinVelocity    = 0.5 // floor preventing stalls
	Inertia        = 0.9 // weight of the previous velocity
	SlopeWeight    = 0.1 // weight of the segment slope factor
	SlopeSkew      = 0.3 // effect of segment length deviation on slope
	baseSlopeValue = 1.0
)

// Simulate rides the course starting at baseSpeed and schedules a trick
// every trickInterval path points. Courses with fewer than two points
// produce no velocities and no tricks.
func Simulate(course model.Course, baseSpeed float64, trickInterval int) model.SimulationResult {
	if len(course.Points) < 2 {
		return model.SimulationResult{
			Path:        append([]model.Point{}, course.Points...),
			Velocities:  []float64{},
			TrickEvents: []model.TrickEvent{},
		}
	}

	lengths := SegmentLengths(course.Points)
	path := Interpolate(course.Points, lengths)
	return model.SimulationResult{
		Path:        path,
		Velocities:  Velocities(lengths, baseSpeed),
		TrickEvents: Tricks(len(path), trickInterval),
	}
}

// SegmentLengths returns the distance between each consecutive pair.
func SegmentLengths(points []model.Point) []float64 {
	if len(points) < 2 {
		return []float64{}
	}
	out := make([]float64, len(points)-1)
	for i := range out {
		out[i] = points[i].Distance(points[i+1])
	}
	return out
}

// Velocities integrates one velocity per segment. Each step blends the
// previous velocity with a slope factor driven by how much the segment
// deviates from the mean segment length, floored at MinVelocity.
func Velocities(lengths []float64, baseSpeed float64) []float64 {
	out := make([]float64, 0, len(lengths))
	if len(lengths) == 0 {
		return out
	}

	mean := 0.0
	for _, l := range lengths {
		mean += l
	}
	mean /= float64(len(lengths))

	v := baseSpeed
	for _, l := range lengths {
		slope := baseSlopeValue + SlopeSkew*(l-mean)
		next := v*Inertia + slope*SlopeWeight
		if next > MinVelocity {
			v = next
		} else {
			// NaN lands here too.
			v = MinVelocity
		}
		out = append(out, v)
	}
	return out
}

// Interpolate densifies the polyline. Every segment contributes
// max(1, round(length)) points strictly between its endpoints; the first
// and last course points appear exactly once.
func Interpolate(points []model.Point, lengths []float64) []model.Point {
	if len(points) == 0 {
		return []model.Point{}
	}
	path := []model.Point{points[0]}
	for i, l := range lengths {
		a, b := points[i], points[i+1]
		steps := max(1, int(math.RoundToEven(l)))
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps+1)
			path = append(path, model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
	}
	return append(path, points[len(points)-1])
}

// Tricks schedules events at every positive multiple of interval below
// pathLen, alternating ollie and kickflip. A non-positive interval disables
// tricks.
func Tricks(pathLen, interval int) []model.TrickEvent {
	events := []model.TrickEvent{}
	if interval <= 0 {
		return events
	}
	for i := interval; i < pathLen; i += interval {
		name := model.TrickOllie
		if i%(2*interval) == 0 {
			name = model.TrickKickflip
		}
		events = append(events, model.TrickEvent{Frame: i, Name: name})
	}
	return events
}
