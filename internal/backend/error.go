package backend

import "errors"

// Error definitions for the backend package.
var (
	ErrUnknownFormat     = errors.New("unknown artifact format")
	ErrAlreadyRegistered = errors.New("decoder is already registered in the registry")
	ErrDecode            = errors.New("failed to decode artifact")
	ErrDimension         = errors.New("feature dimension mismatch")
)
