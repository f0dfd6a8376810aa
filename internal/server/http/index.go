package http

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// IndexHandler serves the static manual-testing page.
func IndexHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}
