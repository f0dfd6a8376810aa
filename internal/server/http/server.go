package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/ekisa-team/estimo/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// NewHandler wires every HTTP route onto one handler.
func NewHandler(svc *service.Predict, models Models) http.Handler {
	mux := http.NewServeMux()

	api := humago.New(mux, huma.DefaultConfig("estimo", Version))
	NewModelHandler(api, models)

	mux.Handle("POST /predict", NewPredictHandler(svc))
	mux.HandleFunc("GET /{$}", IndexHandler)

	return WithRequestLogging(mux)
}

// NewServer creates the HTTP server listening on port.
func NewServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
