package model

import "github.com/google/uuid"

// Trick names.
const (
	TrickOllie    = "ollie"
	TrickKickflip = "kickflip"
)

// TrickEvent is a named event attached to an index of the simulated path.
type TrickEvent struct {
	Frame int    `json:"frame"`
	Name  string `json:"name"`
}

// SimulationResult is the outcome of riding a course.
// Velocities hold one value per course segment, not per path point.
type SimulationResult struct {
	Path        []Point      `json:"path"`
	Velocities  []float64    `json:"velocities"`
	TrickEvents []TrickEvent `json:"trick_events"`
}

// Session holds every artifact of one pipeline run.
type Session struct {
	ID         uuid.UUID
	Source     string
	Frame      Frame
	Edges      EdgeMap
	Course     Course
	Simulation SimulationResult
	Overlay    string
}
