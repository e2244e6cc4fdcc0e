package render

import "errors"

// MaxDimension bounds preview and export resolution.
const MaxDimension = 4096

var (
	// ErrInvalidSize indicates a width or height outside [1, MaxDimension].
	ErrInvalidSize = errors.New("render: invalid resolution")
)
