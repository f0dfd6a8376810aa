package service

import "errors"

// Error definitions for the service package.
var (
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrDimensionOrType = errors.New("invalid features")
	ErrPrediction      = errors.New("prediction failed")
)
