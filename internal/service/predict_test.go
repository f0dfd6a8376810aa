package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/estimo/internal/backend"
	"github.com/ekisa-team/estimo/internal/model"
)

type MockModels struct {
	mock.Mock
}

func (m *MockModels) Predictor(ctx context.Context) (backend.Predictor, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).(backend.Predictor); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type sumPredictor struct {
	dim int
	err error
}

func (p sumPredictor) Format() backend.Format { return "sum" }
func (p sumPredictor) Dimension() int         { return p.dim }
func (p sumPredictor) Predict(_ context.Context, features backend.FeatureVector) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	var s float64
	for _, f := range features {
		s += f
	}
	return s, nil
}

func TestHandle_Success(t *testing.T) {
	models := new(MockModels)
	models.On("Predictor", mock.Anything).Return(sumPredictor{dim: 4}, nil).Once()

	resp, err := NewPredict(models).Handle(context.Background(), []byte(`{"features":[5.1,3.5,1.4,0.2]}`))

	require.NoError(t, err)
	assert.InDelta(t, 10.2, resp.Prediction, 1e-9)
	models.AssertExpectations(t)
}

func TestHandle_InvalidPayloadNeverTouchesModel(t *testing.T) {
	tests := map[string]string{
		"empty":            ``,
		"whitespace":       "  \n",
		"malformed":        `{"features":`,
		"null":             `null`,
		"array":            `[1,2,3]`,
		"missing features": `{"values":[1,2]}`,
		"features string":  `{"features":"1,2"}`,
		"empty features":   `{"features":[]}`,
		"trailing data":    `{"features":[1]} {"features":[2]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			models := new(MockModels)

			_, err := NewPredict(models).Handle(context.Background(), []byte(body))

			assert.ErrorIs(t, err, ErrInvalidPayload)
			models.AssertNotCalled(t, "Predictor", mock.Anything)
		})
	}
}

func TestHandle_NonNumericFeatures(t *testing.T) {
	tests := map[string]string{
		"string":       `{"features":[1,"2"]}`,
		"null":         `{"features":[null]}`,
		"nested":       `{"features":[[1]]}`,
		"out of range": `{"features":[1e400]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			models := new(MockModels)

			_, err := NewPredict(models).Handle(context.Background(), []byte(body))

			assert.ErrorIs(t, err, ErrDimensionOrType)
			models.AssertNotCalled(t, "Predictor", mock.Anything)
		})
	}
}

func TestHandle_DimensionMismatch(t *testing.T) {
	models := new(MockModels)
	models.On("Predictor", mock.Anything).Return(sumPredictor{dim: 4}, nil)

	_, err := NewPredict(models).Handle(context.Background(), []byte(`{"features":[1,2,3]}`))

	require.ErrorIs(t, err, ErrDimensionOrType)
	assert.Contains(t, err.Error(), "model expects 4")
}

func TestHandle_ModelUnavailable(t *testing.T) {
	models := new(MockModels)
	models.On("Predictor", mock.Anything).Return(nil, model.ErrUnavailable)

	_, err := NewPredict(models).Handle(context.Background(), []byte(`{"features":[1]}`))

	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestHandle_PredictorFailure(t *testing.T) {
	models := new(MockModels)
	models.On("Predictor", mock.Anything).Return(sumPredictor{err: errors.New("boom")}, nil)

	_, err := NewPredict(models).Handle(context.Background(), []byte(`{"features":[1]}`))

	assert.ErrorIs(t, err, ErrPrediction)
}

func TestFromValue_AcceptsFloat64(t *testing.T) {
	features, err := NewPredict(new(MockModels)).FromValue(map[string]any{
		"features": []any{1.0, 2.5},
	})

	require.NoError(t, err)
	assert.Equal(t, backend.FeatureVector{1, 2.5}, features)
}

func TestHandle_NonFinitePrediction(t *testing.T) {
	models := new(MockModels)
	models.On("Predictor", mock.Anything).Return(sumPredictor{dim: 2}, nil)

	_, err := NewPredict(models).Handle(context.Background(), []byte(`{"features":[1.7e308,1.7e308]}`))

	assert.ErrorIs(t, err, ErrPrediction)
}
