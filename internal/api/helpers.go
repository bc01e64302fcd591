package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"sentiment-analyzer/internal/ollama"
	"sentiment-analyzer/internal/sentiment"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError sends an error payload with a "detail" field, matching the
// contract the UI consumes.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// mapClassifyError translates a classification failure into an HTTP status
// and a caller-facing detail message. Dependency failures surface distinctly
// from a genuinely neutral classification.
func mapClassifyError(err error) (int, string) {
	var statusErr *ollama.StatusError
	switch {
	case errors.Is(err, sentiment.ErrEmptyText):
		return http.StatusBadRequest, "Text cannot be empty"
	case errors.Is(err, ollama.ErrTimeout):
		return http.StatusGatewayTimeout, "Ollama service timed out"
	case errors.Is(err, ollama.ErrUnavailable):
		return http.StatusServiceUnavailable, "Could not connect to Ollama service. Make sure Ollama is running and the model is available."
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, statusErr.Error()
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// errorCause labels a classification failure for metrics.
func errorCause(err error) string {
	var statusErr *ollama.StatusError
	switch {
	case errors.Is(err, ollama.ErrTimeout):
		return "timeout"
	case errors.Is(err, ollama.ErrUnavailable):
		return "unavailable"
	case errors.As(err, &statusErr):
		return "upstream_error"
	default:
		return "internal"
	}
}
