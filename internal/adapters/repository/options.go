package repository

import "os"

// Option applies a configuration option to the DirectoryStore.
type Option func(*DirectoryStore)

// WithPlots toggles PNG plot rendering.
func WithPlots(enabled bool) Option {
	return func(s *DirectoryStore) {
		s.plots = enabled
	}
}

// WithDirMode sets the permission bits for created session directories.
func WithDirMode(mode os.FileMode) Option {
	return func(s *DirectoryStore) {
		if mode != 0 {
			s.dirMode = mode
		}
	}
}

// WithFileMode sets the permission bits for written artifact files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *DirectoryStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}
