package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ekisa-team/estimo/internal/service"
)

// maxBodyBytes caps a prediction request body.
const maxBodyBytes = 1 << 20

type (
	// ErrorDTO is the body of every failed prediction.
	ErrorDTO struct {
		Error string `json:"error"`
	}
)

// PredictHandler handles POST /predict.
type PredictHandler struct {
	service *service.Predict
}

// NewPredictHandler creates a new PredictHandler instance.
func NewPredictHandler(svc *service.Predict) *PredictHandler {
	return &PredictHandler{service: svc}
}

// ServeHTTP handles the predict operation.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "failed to read request body: " + err.Error()})
		return
	}

	resp, err := h.service.Handle(r.Context(), raw)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Prediction failed", "request_id", RequestID(r.Context()), "error", err)
		}
		writeJSON(w, status, ErrorDTO{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrInvalidPayload) || errors.Is(err, service.ErrDimensionOrType) {
		return http.StatusBadRequest
	}

	// model.ErrUnavailable and predictor failures alike.
	return http.StatusInternalServerError
}

// writeJSON encodes v before committing the status, so an unencodable
// value becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorDTO{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
