package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sentiment-analyzer/internal/ollama"
	"sentiment-analyzer/internal/sentiment"
)

func TestMapClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty text", sentiment.ErrEmptyText, http.StatusBadRequest},
		{"wrapped empty text", errors.Join(errors.New("ctx"), sentiment.ErrEmptyText), http.StatusBadRequest},
		{"timeout", ollama.ErrTimeout, http.StatusGatewayTimeout},
		{"unavailable", ollama.ErrUnavailable, http.StatusServiceUnavailable},
		{"upstream status", &ollama.StatusError{StatusCode: 500}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := mapClassifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, detail)
		})
	}
}

func TestErrorCause(t *testing.T) {
	assert.Equal(t, "timeout", errorCause(ollama.ErrTimeout))
	assert.Equal(t, "unavailable", errorCause(ollama.ErrUnavailable))
	assert.Equal(t, "upstream_error", errorCause(&ollama.StatusError{StatusCode: 500}))
	assert.Equal(t, "internal", errorCause(errors.New("boom")))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "Text cannot be empty")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail": "Text cannot be empty"}`, rec.Body.String())
}
