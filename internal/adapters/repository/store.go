// Package repository persists finished sessions as a directory of artifacts.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/edgeskate/internal/domain/model"
	"github.com/okian/edgeskate/pkg/metrics"
)

// Artifact file names.
const (
	FrameFile      = "frame.json"
	EdgesFile      = "edges.json"
	CourseFile     = "course.json"
	SimulationFile = "simulation.json"
	OverlayFile    = "overlay.txt"
	CoursePlot     = "course.png"
	VelocityPlot   = "velocity.png"
)

// Artifacts lists what a Save call wrote.
type Artifacts struct {
	Dir   string
	Files []string
}

// Store saves sessions.
type Store interface {
	// Save writes every artifact of session under name and returns the paths written.
	Save(ctx context.Context, name string, session *model.Session) (Artifacts, error)
}

// DirectoryStore writes each session into its own directory below a root.
type DirectoryStore struct {
	root     string
	plots    bool
	dirMode  os.FileMode
	fileMode os.FileMode
}

var _ Store = (*DirectoryStore)(nil)

// NewDirectoryStore creates a store rooted at root.
func NewDirectoryStore(root string, opts ...Option) *DirectoryStore {
	s := &DirectoryStore{
		root:     root,
		plots:    true,
		dirMode:  0o755,
		fileMode: 0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory sessions are written under.
func (s *DirectoryStore) Root() string { return s.root }

type artifactStep struct {
	file  string
	write func(path string) error
}

type courseDocument struct {
	Points []model.Point `json:"points"`
	Length float64       `json:"length"`
}

// Save implements Store.
func (s *DirectoryStore) Save(ctx context.Context, name string, session *model.Session) (Artifacts, error) {
	start := time.Now()
	dir := filepath.Join(s.root, name)
	out := Artifacts{Dir: dir}
	if session == nil {
		return out, fmt.Errorf("%w: nil session", ErrExport)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		metrics.RecordErrorByComponent("repository", "mkdir")
		return out, fmt.Errorf("%w: %v", ErrExport, err)
	}

	points := session.Course.Points
	if points == nil {
		points = []model.Point{}
	}
	sim := session.Simulation
	if sim.Path == nil {
		sim.Path = []model.Point{}
	}
	if sim.Velocities == nil {
		sim.Velocities = []float64{}
	}
	if sim.TrickEvents == nil {
		sim.TrickEvents = []model.TrickEvent{}
	}

	steps := []artifactStep{
		{FrameFile, s.jsonWriter(session.Frame)},
		{EdgesFile, s.jsonWriter(session.Edges)},
		{CourseFile, s.jsonWriter(courseDocument{Points: points, Length: session.Course.Length()})},
		{SimulationFile, s.jsonWriter(sim)},
		{OverlayFile, func(path string) error {
			return os.WriteFile(path, []byte(session.Overlay), s.fileMode)
		}},
	}
	if s.plots && len(points) > 0 {
		steps = append(steps, artifactStep{CoursePlot, func(path string) error { return saveCoursePlot(path, points, sim.Path) }})
	}
	if s.plots && len(sim.Velocities) > 0 {
		steps = append(steps, artifactStep{VelocityPlot, func(path string) error { return saveVelocityPlot(path, sim.Velocities) }})
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		path := filepath.Join(dir, step.file)
		if err := step.write(path); err != nil {
			metrics.RecordErrorByComponent("repository", "write")
			return out, fmt.Errorf("%w: %s: %v", ErrExport, step.file, err)
		}
		out.Files = append(out.Files, path)
	}

	metrics.RecordStageLatency(metrics.StageExport, float64(time.Since(start).Microseconds())/1000)
	return out, nil
}

func (s *DirectoryStore) jsonWriter(v any) func(string) error {
	return func(path string) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), s.fileMode)
	}
}
