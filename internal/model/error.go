package model

import "errors"

// Error definitions for the model package.
var (
	ErrUnavailable = errors.New("model unavailable")
)
