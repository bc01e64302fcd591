package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sentiment-analyzer/internal/metrics"
	"sentiment-analyzer/internal/sentiment"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sentiment Analyzer API is running!"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result, err := s.svc.Classify(r.Context(), text)
	if err != nil {
		status, detail := mapClassifyError(err)
		if !errors.Is(err, sentiment.ErrEmptyText) {
			metrics.InferenceErrorsTotal.WithLabelValues(errorCause(err)).Inc()
			s.logger.Error("classification failed",
				zap.Error(err),
				zap.Int("status", status),
			)
		}
		writeError(w, status, detail)
		return
	}

	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(string(result.Sentiment)).Inc()

	s.logger.Info("analyzed text",
		zap.String("sentiment", string(result.Sentiment)),
		zap.Int("text_length", len(result.Text)),
		zap.Duration("duration", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.svc.Probe(r.Context())
	writeJSON(w, http.StatusOK, status)
}

// readText extracts the text to analyze from a JSON body or, for the original
// UI's form posts, from a form-encoded "text" field.
func readText(r *http.Request) (string, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", false
		}
		return req.Text, true
	}

	if err := r.ParseForm(); err != nil {
		return "", false
	}
	return r.FormValue("text"), true
}
