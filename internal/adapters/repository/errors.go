package repository

import "errors"

// ErrExport wraps failures writing session artifacts.
var ErrExport = errors.New("export session")
