package player

import (
	"io"
	"time"
)

// Option configures playback.
type Option func(*settings)

type settings struct {
	out   io.Writer
	delay time.Duration
	clear bool
}

// WithWriter sets the playback destination.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithFrameDelay sets the base delay between frames; zero disables pacing.
func WithFrameDelay(d time.Duration) Option {
	return func(s *settings) {
		s.delay = max(0, d)
	}
}

// WithClear toggles clearing the terminal before each frame.
func WithClear(enabled bool) Option {
	return func(s *settings) {
		s.clear = enabled
	}
}
