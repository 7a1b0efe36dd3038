package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/okian/edgeskate/internal/domain/model"
)

func testSession() *model.Session {
	return &model.Session{
		ID:     uuid.New(),
		Source: "frame.json",
		Frame:  model.Frame{{0, 0.5}, {1, 0.25}},
		Edges:  model.Frame{{1, 0}, {1, 1}},
		Course: model.Course{Points: []model.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 5}}},
		Simulation: model.SimulationResult{
			Path:        []model.Point{{X: 0, Y: 0}, {X: 1.5, Y: 2}, {X: 3, Y: 4}, {X: 3, Y: 5}},
			Velocities:  []float64{2, 1.9},
			TrickEvents: []model.TrickEvent{{Frame: 2, Name: model.TrickOllie}},
		},
		Overlay: "S=\n@S",
	}
}

func TestDirectoryStore_Save(t *testing.T) {
	ctx := context.Background()
	store := NewDirectoryStore(t.TempDir())

	arts, err := store.Save(ctx, "session_01", testSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arts.Dir != filepath.Join(store.Root(), "session_01") {
		t.Errorf("unexpected dir %q", arts.Dir)
	}
	if len(arts.Files) != 7 {
		t.Fatalf("expected 7 artifacts, got %d: %v", len(arts.Files), arts.Files)
	}
	for _, f := range arts.Files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("artifact %s missing: %v", f, err)
		}
	}

	var course struct {
		Points [][2]float64 `json:"points"`
		Length float64      `json:"length"`
	}
	readJSON(t, filepath.Join(arts.Dir, CourseFile), &course)
	if len(course.Points) != 3 || course.Points[1] != [2]float64{3, 4} {
		t.Errorf("unexpected course points %v", course.Points)
	}
	if course.Length != 6 {
		t.Errorf("expected length 6, got %v", course.Length)
	}

	var sim model.SimulationResult
	readJSON(t, filepath.Join(arts.Dir, SimulationFile), &sim)
	if len(sim.Path) != 4 || len(sim.Velocities) != 2 || sim.TrickEvents[0].Name != model.TrickOllie {
		t.Errorf("unexpected simulation %+v", sim)
	}

	overlay, err := os.ReadFile(filepath.Join(arts.Dir, OverlayFile))
	if err != nil || string(overlay) != "S=\n@S" {
		t.Errorf("unexpected overlay %q (%v)", overlay, err)
	}

	for _, name := range []string{CoursePlot, VelocityPlot} {
		data, err := os.ReadFile(filepath.Join(arts.Dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", name)
		}
	}
}

func TestDirectoryStore_EmptySimulation(t *testing.T) {
	store := NewDirectoryStore(t.TempDir())
	session := &model.Session{Frame: model.Frame{{0}}, Edges: model.Frame{{0}}}

	arts, err := store.Save(context.Background(), "empty", session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arts.Files) != 5 {
		t.Errorf("expected plots to be skipped, got %v", arts.Files)
	}

	raw, err := os.ReadFile(filepath.Join(arts.Dir, SimulationFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte(`"path": []`)) || !bytes.Contains(raw, []byte(`"trick_events": []`)) {
		t.Errorf("empty slices should serialize as arrays: %s", raw)
	}
}

func TestDirectoryStore_WithoutPlots(t *testing.T) {
	store := NewDirectoryStore(t.TempDir(), WithPlots(false), WithFileMode(0o600))
	arts, err := store.Save(context.Background(), "noplots", testSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arts.Files) != 5 {
		t.Errorf("expected 5 artifacts, got %d", len(arts.Files))
	}
	if _, err := os.Stat(filepath.Join(arts.Dir, CoursePlot)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("course plot should not exist, stat err %v", err)
	}
}

func TestDirectoryStore_Errors(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewDirectoryStore(root)
	if _, err := store.Save(context.Background(), "s", testSession()); !errors.Is(err, ErrExport) {
		t.Errorf("expected ErrExport when root is a file, got %v", err)
	}
	if _, err := store.Save(context.Background(), "s", nil); !errors.Is(err, ErrExport) {
		t.Errorf("expected ErrExport for nil session, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDirectoryStore(t.TempDir()).Save(ctx, "s", testSession()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}
