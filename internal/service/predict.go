package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ekisa-team/estimo/internal/backend"
)

const predictSchemaURL = "predict.schema.json"

//go:embed predict.schema.json
var predictSchema string

// Models hands out the shared predictor.
type Models interface {
	Predictor(ctx context.Context) (backend.Predictor, error)
}

// Response is the result of one prediction.
type Response struct {
	Prediction float64 `json:"prediction"`
}

// Predict is the prediction service: it validates payloads, builds feature
// vectors and runs them through the registry's predictor.
type Predict struct {
	models Models
	schema *jsonschema.Schema
}

// NewPredict creates a new prediction service.
func NewPredict(models Models) *Predict {
	return &Predict{
		models: models,
		schema: jsonschema.MustCompileString(predictSchemaURL, predictSchema),
	}
}

// Handle parses raw as a prediction request and returns its prediction.
// Payload errors are reported before the model is consulted.
func (s *Predict) Handle(ctx context.Context, raw []byte) (Response, error) {
	features, err := s.Decode(raw)
	if err != nil {
		return Response{}, err
	}

	y, err := s.Predict(ctx, features)
	if err != nil {
		return Response{}, err
	}

	return Response{Prediction: y}, nil
}

// Decode parses raw JSON into a feature vector.
func (s *Predict) Decode(raw []byte) (backend.FeatureVector, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: JSON body with 'features' array required", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON body", ErrInvalidPayload)
	}

	return s.FromValue(payload)
}

// FromValue validates an already decoded payload and builds the feature
// vector. Numbers may be json.Number or float64.
func (s *Predict) FromValue(payload any) (backend.FeatureVector, error) {
	if err := s.schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, schemaMessage(err))
	}

	items := payload.(map[string]any)["features"].([]any)
	features := make(backend.FeatureVector, len(items))
	for i, item := range items {
		v, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("%w: features[%d]: %v", ErrDimensionOrType, i, err)
		}
		features[i] = v
	}

	return features, nil
}

// Predict runs features through the shared predictor.
func (s *Predict) Predict(ctx context.Context, features backend.FeatureVector) (float64, error) {
	p, err := s.models.Predictor(ctx)
	if err != nil {
		return 0, err
	}

	if d := p.Dimension(); d > 0 && len(features) != d {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", ErrDimensionOrType, len(features), d)
	}

	y, err := p.Predict(ctx, features)
	if err != nil {
		slog.Error("Failed to predict", "error", err, "features", len(features))
		return 0, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		slog.Error("Prediction is not finite", "prediction", y, "features", len(features))
		return 0, fmt.Errorf("%w: prediction is not finite", ErrPrediction)
	}

	return y, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s is out of range", x)
		}
		f = parsed
	case float64:
		f = x
	default:
		return 0, fmt.Errorf("expected number, got %s", jsonKind(v))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("value is not finite")
	}

	return f, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// schemaMessage reduces a validation error to its innermost cause.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	if ve.InstanceLocation == "" {
		return ve.Message
	}

	return ve.InstanceLocation + ": " + ve.Message
}
