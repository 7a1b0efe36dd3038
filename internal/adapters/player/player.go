// Package player animates a finished session as a sequence of ASCII frames.
package player

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/okian/edgeskate/internal/adapters/render"
	"github.com/okian/edgeskate/internal/domain/model"
)

// ClearScreen is the ANSI sequence written before each frame when clearing is on.
const ClearScreen = "\x1b[2J\x1b[H"

// DefaultFrameDelay is the base delay between frames.
const DefaultFrameDelay = 150 * time.Millisecond

// minPaceVelocity bounds how much a fast segment can shorten a frame.
const minPaceVelocity = 0.5

// Frame is one playback step.
type Frame struct {
	Index    int
	Overlay  string
	Velocity *float64
	Trick    *model.TrickEvent
}

// Frames returns one frame per prefix of the simulated path. Index i shows
// the first i path points; tricks are matched on that index. A session
// without a path yields a single frame of the bare processed frame.
func Frames(session *model.Session) []Frame {
	path := session.Simulation.Path
	if len(path) == 0 {
		return []Frame{{Index: 0, Overlay: render.Overlay(session.Frame, nil)}}
	}

	tricks := make(map[int]model.TrickEvent, len(session.Simulation.TrickEvents))
	for _, ev := range session.Simulation.TrickEvents {
		tricks[ev.Frame] = ev
	}
	velocities := session.Simulation.Velocities

	frames := make([]Frame, 0, len(path))
	for idx := 1; idx <= len(path); idx++ {
		f := Frame{
			Index:   idx,
			Overlay: render.Overlay(session.Frame, path[:idx]),
		}
		if len(velocities) > 0 {
			v := velocities[min(idx-1, len(velocities)-1)]
			f.Velocity = &v
		}
		if ev, ok := tricks[idx]; ok {
			f.Trick = &ev
		}
		frames = append(frames, f)
	}
	return frames
}

// Play writes every frame of session, pacing frames by velocity. It stops
// early with the context error when ctx is done.
func Play(ctx context.Context, session *model.Session, opts ...Option) error {
	s := settings{out: os.Stdout, delay: DefaultFrameDelay, clear: true}
	for _, opt := range opts {
		opt(&s)
	}

	w := bufio.NewWriter(s.out)
	for _, f := range Frames(session) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFrame(w, f, s.clear); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Index, err)
		}
		if err := wait(ctx, Delay(s.delay, f.Velocity)); err != nil {
			return err
		}
	}
	return nil
}

// Delay scales base by the inverse of velocity, never dividing by less than 0.5.
// A missing or non-positive velocity keeps the base delay.
func Delay(base time.Duration, velocity *float64) time.Duration {
	if base <= 0 {
		return 0
	}
	if velocity == nil || *velocity <= 0 {
		return base
	}
	return time.Duration(float64(base) / max(minPaceVelocity, *velocity))
}

func writeFrame(w *bufio.Writer, f Frame, clear bool) error {
	if clear {
		w.WriteString(ClearScreen)
	}
	w.WriteString(f.Overlay)
	w.WriteByte('\n')
	if f.Velocity != nil {
		fmt.Fprintf(w, "velocity: %.2f\n", *f.Velocity)
	}
	if f.Trick != nil {
		fmt.Fprintf(w, "trick: %s (frame %d)\n", f.Trick.Name, f.Trick.Frame)
	}
	return w.Flush()
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
