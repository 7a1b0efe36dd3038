package player_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/edgeskate/internal/adapters/player"
	"github.com/okian/edgeskate/internal/adapters/render"
	"github.com/okian/edgeskate/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func session() *model.Session {
	frame := model.Frame{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
	}
	path := []model.Point{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}}
	return &model.Session{
		Frame: frame,
		Simulation: model.SimulationResult{
			Path:        path,
			Velocities:  []float64{1.25, 3},
			TrickEvents: []model.TrickEvent{{Frame: 2, Name: model.TrickOllie}},
		},
		Overlay: render.Overlay(frame, path),
	}
}

func TestFrames(t *testing.T) {
	Convey("Given a session with a four point path", t, func() {
		s := session()
		frames := player.Frames(s)

		Convey("Then there is one frame per path prefix", func() {
			So(frames, ShouldHaveLength, 4)
			for i, f := range frames {
				So(f.Index, ShouldEqual, i+1)
				So(strings.Count(f.Overlay, "S"), ShouldEqual, i+1)
			}
		})

		Convey("And the last frame equals the session overlay", func() {
			So(frames[len(frames)-1].Overlay, ShouldEqual, s.Overlay)
		})

		Convey("And velocities clamp to the last segment", func() {
			So(*frames[0].Velocity, ShouldEqual, 1.25)
			So(*frames[1].Velocity, ShouldEqual, 3)
			So(*frames[3].Velocity, ShouldEqual, 3)
		})

		Convey("And tricks attach to their index", func() {
			So(frames[0].Trick, ShouldBeNil)
			So(frames[1].Trick, ShouldNotBeNil)
			So(frames[1].Trick.Name, ShouldEqual, model.TrickOllie)
		})
	})

	Convey("Given a session without a path", t, func() {
		s := &model.Session{Frame: model.Frame{{1, 0}}}
		frames := player.Frames(s)

		Convey("Then a single bare frame is produced", func() {
			So(frames, ShouldHaveLength, 1)
			So(frames[0].Index, ShouldEqual, 0)
			So(frames[0].Overlay, ShouldEqual, "@ ")
			So(frames[0].Velocity, ShouldBeNil)
		})
	})
}

func TestPlay(t *testing.T) {
	Convey("Given a session played without delay or clearing", t, func() {
		s := session()
		var buf bytes.Buffer
		err := player.Play(context.Background(), s,
			player.WithWriter(&buf), player.WithFrameDelay(0), player.WithClear(false))

		Convey("Then the output streams every frame with its status lines", func() {
			out := buf.String()
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, s.Overlay)
			So(out, ShouldContainSubstring, "velocity: 1.25\n")
			So(out, ShouldContainSubstring, "trick: ollie (frame 2)\n")
			So(out, ShouldNotContainSubstring, player.ClearScreen)
		})
	})

	Convey("Given clearing enabled", t, func() {
		var buf bytes.Buffer
		err := player.Play(context.Background(), session(), player.WithWriter(&buf), player.WithFrameDelay(0))

		Convey("Then every frame starts with the clear sequence", func() {
			So(err, ShouldBeNil)
			So(strings.Count(buf.String(), player.ClearScreen), ShouldEqual, 4)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer
		err := player.Play(ctx, session(), player.WithWriter(&buf))

		Convey("Then playback stops before writing", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}

func TestDelay(t *testing.T) {
	v := func(x float64) *float64 { return &x }
	base := 100 * time.Millisecond

	tests := []struct {
		name     string
		base     time.Duration
		velocity *float64
		want     time.Duration
	}{
		{"no velocity", base, nil, base},
		{"fast", base, v(4), 25 * time.Millisecond},
		{"slow is capped", base, v(0.1), 200 * time.Millisecond},
		{"zero velocity", base, v(0), base},
		{"no base", 0, v(2), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := player.Delay(tt.base, tt.velocity); got != tt.want {
				t.Errorf("Delay() = %v, want %v", got, tt.want)
			}
		})
	}
}
