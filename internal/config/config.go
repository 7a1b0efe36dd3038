// Package config defines pipeline configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/okian/edgeskate/internal/domain/model"
)

// Config contains pipeline and process configuration.
type Config struct {
	// TargetResolution is the grid every frame is resized to.
	TargetResolution model.Resolution `koanf:"target_resolution"`

	// DenoiseStrength scales the Gaussian blur; 0 disables it.
	DenoiseStrength float64 `koanf:"denoise_strength"`

	// EdgeThreshold is the inclusive cut-off on normalized gradient magnitude.
	EdgeThreshold float64 `koanf:"edge_threshold"`

	// SmoothingFactor scales the course moving-average radius.
	SmoothingFactor float64 `koanf:"smoothing_factor"`

	// BaseSpeed is the initial rider velocity.
	BaseSpeed float64 `koanf:"base_speed"`

	// TrickInterval is the path index spacing of trick events; <= 0 disables tricks.
	TrickInterval int `koanf:"trick_interval"`

	// OutputDir receives one directory per session.
	OutputDir string `koanf:"output_dir"`

	// WorkerCount sets the number of batch workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the batch job queue; 0 sizes it to the batch.
	QueueSize int `koanf:"queue_size"`

	// FrameDelayMS is the base playback delay between frames.
	FrameDelayMS int `koanf:"frame_delay_ms"`

	// MetricsAddr, when set, serves /metrics on that address.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		TargetResolution: model.Resolution{Height: 128, Width: 128},
		DenoiseStrength:  0.25,
		EdgeThreshold:    0.25,
		SmoothingFactor:  0.5,
		BaseSpeed:        2.0,
		TrickInterval:    15,
		OutputDir:        "output",
		WorkerCount:      runtime.NumCPU(),
		QueueSize:        0,
		FrameDelayMS:     150,
		MetricsAddr:      "",
		LogLevel:         "info",
	}
}

// FrameDelay returns FrameDelayMS as a duration.
func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.FrameDelayMS) * time.Millisecond
}

// Validate checks the numeric parameters.
func (c *Config) Validate() error {
	if err := c.TargetResolution.Validate(); err != nil {
		return fmt.Errorf("%w: target_resolution: %v", ErrInvalidConfig, err)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"denoise_strength", c.DenoiseStrength},
		{"edge_threshold", c.EdgeThreshold},
		{"smoothing_factor", c.SmoothingFactor},
		{"base_speed", c.BaseSpeed},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.value)
		}
	}
	if c.DenoiseStrength < 0 {
		return fmt.Errorf("%w: denoise_strength must be >= 0, got %v", ErrInvalidConfig, c.DenoiseStrength)
	}
	if c.SmoothingFactor < 0 {
		return fmt.Errorf("%w: smoothing_factor must be >= 0, got %v", ErrInvalidConfig, c.SmoothingFactor)
	}
	if c.BaseSpeed <= 0 {
		return fmt.Errorf("%w: base_speed must be > 0, got %v", ErrInvalidConfig, c.BaseSpeed)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue_size must be >= 0, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.FrameDelayMS < 0 {
		return fmt.Errorf("%w: frame_delay_ms must be >= 0, got %d", ErrInvalidConfig, c.FrameDelayMS)
	}
	return nil
}

// ParseResolution parses "HxW", e.g. "128x96".
func ParseResolution(s string) (model.Resolution, error) {
	h, w, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return model.Resolution{}, fmt.Errorf("%w: resolution %q must be HxW", ErrInvalidConfig, s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return model.Resolution{}, fmt.Errorf("%w: resolution height %q: %v", ErrInvalidConfig, h, err)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return model.Resolution{}, fmt.Errorf("%w: resolution width %q: %v", ErrInvalidConfig, w, err)
	}
	res := model.Resolution{Height: height, Width: width}
	if err := res.Validate(); err != nil {
		return model.Resolution{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return res, nil
}
