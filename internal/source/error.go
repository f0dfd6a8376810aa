package source

import "errors"

// Error definitions for the source package.
var (
	ErrInvalidOrigin = errors.New("invalid origin remote")
	ErrExternalTool  = errors.New("external tool failed")
	ErrNotFound      = errors.New("artifact not present")
)
