package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/estimo/internal/model"
)

type (
	// TierDTO describes one resolver tier attempt.
	TierDTO struct {
		Name       string `json:"name"`
		OK         bool   `json:"ok"`
		Error      string `json:"error,omitempty"`
		DurationMS int64  `json:"duration_ms"`
	}

	// ModelStatusDTO describes the registry state.
	ModelStatusDTO struct {
		State     string     `json:"state"           enum:"uninitialized,ready,unavailable"`
		Resolver  string     `json:"resolver"`
		Path      string     `json:"path,omitempty"`
		Format    string     `json:"format,omitempty"`
		Dimension int        `json:"dimension,omitempty"`
		LoadedAt  *time.Time `json:"loaded_at,omitempty"`
		Attempts  int        `json:"attempts"`
		Error     string     `json:"error,omitempty"`
		Tiers     []TierDTO  `json:"tiers,omitempty"`
	}
)

type (
	// ModelStatusOutput is the huma output for the model status operations.
	ModelStatusOutput struct {
		Body ModelStatusDTO
	}
)

// Models is the part of the registry the model handler needs.
type Models interface {
	Status() model.Status
	Reload(ctx context.Context) (model.Status, error)
}

// ModelHandler handles HTTP requests about the served model.
type ModelHandler struct {
	models Models
}

// NewModelHandler creates a new ModelHandler instance.
func NewModelHandler(api huma.API, models Models) *ModelHandler {
	h := &ModelHandler{models: models}

	huma.Register(api, huma.Operation{
		OperationID:   "get-model",
		Method:        http.MethodGet,
		Path:          "/model",
		Summary:       "Get the served model status",
		Tags:          []string{"model"},
		DefaultStatus: http.StatusOK,
	}, h.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID:   "reload-model",
		Method:        http.MethodPost,
		Path:          "/model/reload",
		Summary:       "Resolve and load the model artifact again",
		Tags:          []string{"model"},
		DefaultStatus: http.StatusOK,
	}, h.handleReload)

	return h
}

// handleStatus handles the get-model operation.
func (h *ModelHandler) handleStatus(_ context.Context, _ *struct{}) (*ModelStatusOutput, error) {
	return &ModelStatusOutput{Body: toStatusDTO(h.models.Status())}, nil
}

// handleReload handles the reload-model operation.
func (h *ModelHandler) handleReload(ctx context.Context, _ *struct{}) (*ModelStatusOutput, error) {
	status, err := h.models.Reload(ctx)
	if err != nil && status.State != model.StateReady {
		return nil, huma.Error503ServiceUnavailable("model unavailable after reload", err)
	}

	return &ModelStatusOutput{Body: toStatusDTO(status)}, nil
}

func toStatusDTO(s model.Status) ModelStatusDTO {
	dto := ModelStatusDTO{
		State:     s.State.String(),
		Resolver:  s.Resolution.State.String(),
		Path:      s.Resolution.Path,
		Format:    string(s.Format),
		Dimension: s.Dimension,
		Attempts:  s.Attempts,
	}
	if !s.LoadedAt.IsZero() {
		loadedAt := s.LoadedAt
		dto.LoadedAt = &loadedAt
	}
	if s.Err != nil {
		dto.Error = s.Err.Error()
	}
	for _, t := range s.Resolution.Tiers {
		tier := TierDTO{
			Name:       t.Tier,
			OK:         t.OK,
			DurationMS: t.Duration.Milliseconds(),
		}
		if t.Err != nil {
			tier.Error = t.Err.Error()
		}
		dto.Tiers = append(dto.Tiers, tier)
	}

	return dto
}
