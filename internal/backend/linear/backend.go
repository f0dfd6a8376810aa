// Package linear decodes and evaluates linear regression artifacts.
package linear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ekisa-team/estimo/internal/backend"
)

type document struct {
	Format       backend.Format `json:"format"`
	NFeatures    int            `json:"n_features"`
	Intercept    float64        `json:"intercept"`
	Coefficients []float64      `json:"coefficients"`
}

// Model is a decoded linear regression: intercept + sum(coef[i] * x[i]).
type Model struct {
	intercept    float64
	coefficients []float64
}

// Decoder implements backend.Decoder for linear artifacts.
type Decoder struct{}

// NewDecoder creates a new linear Decoder.
func NewDecoder() Decoder {
	return Decoder{}
}

// Format returns the decoder format.
func (Decoder) Format() backend.Format {
	return backend.FormatLinear
}

// Decode validates and decodes a linear artifact.
func (Decoder) Decode(data []byte) (backend.Predictor, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.NFeatures <= 0 {
		return nil, errors.New("n_features must be positive")
	}
	if len(doc.Coefficients) != doc.NFeatures {
		return nil, fmt.Errorf("got %d coefficients for %d features", len(doc.Coefficients), doc.NFeatures)
	}
	if math.IsNaN(doc.Intercept) || math.IsInf(doc.Intercept, 0) {
		return nil, errors.New("intercept is not finite")
	}
	for i, c := range doc.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}

	return &Model{
		intercept:    doc.Intercept,
		coefficients: doc.Coefficients,
	}, nil
}

// Format returns the model format.
func (m *Model) Format() backend.Format {
	return backend.FormatLinear
}

// Dimension returns the number of coefficients.
func (m *Model) Dimension() int {
	return len(m.coefficients)
}

// Predict evaluates the model on one row.
func (m *Model) Predict(_ context.Context, features backend.FeatureVector) (float64, error) {
	if len(features) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: got %d, want %d", backend.ErrDimension, len(features), len(m.coefficients))
	}

	y := m.intercept
	for i, x := range features {
		y += m.coefficients[i] * x
	}

	return y, nil
}
