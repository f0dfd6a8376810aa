package backend

import (
	"context"
	"encoding/json"
)

// Format is a string identifier for a serialized predictor format.
type Format string

const (
	FormatLinear Format = "linear"
	FormatForest Format = "forest"
)

// FeatureVector is one row of numeric features in training-schema order.
type FeatureVector []float64

// Predictor is a deserialized, ready to invoke regression model. Implementations
// are immutable after decoding and safe for concurrent use.
type Predictor interface {
	// Format returns the artifact format the predictor was decoded from.
	Format() Format

	// Dimension returns the number of features the predictor expects.
	Dimension() int

	// Predict returns the prediction for a single row.
	Predict(ctx context.Context, features FeatureVector) (float64, error)
}

// Decoder turns artifact bytes of one format into a Predictor.
type Decoder interface {
	Format() Format
	Decode(data []byte) (Predictor, error)
}

// Header is the part of every artifact document shared by all formats.
type Header struct {
	Format    Format `json:"format"`
	NFeatures int    `json:"n_features"`
}

// ReadHeader decodes the artifact header.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return Header{}, err
	}

	return h, nil
}
