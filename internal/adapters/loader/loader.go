// Package loader reads grayscale frames stored as numeric matrices.
//
// Supported encodings are JSON and YAML; both describe a frame as a list of
// rows, each row a list of numbers.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/edgeskate/internal/domain/model"
)

// Format identifies a frame encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported frame format")

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Loader loads and validates frames.
type Loader struct{}

// New returns a Loader.
func New() *Loader { return &Loader{} }

// Load reads the frame stored at path.
func (l *Loader) Load(ctx context.Context, path string) (model.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	frame, err := l.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

// Decode parses a frame from r and validates its shape. Malformed content
// is reported as model.ErrInvalidFrame.
func (l *Loader) Decode(r io.Reader, format Format) (model.Frame, error) {
	var frame model.Frame
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&frame); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidFrame, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&frame); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidFrame, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}
