package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-analyzer/internal/ollama"
	"sentiment-analyzer/internal/sentiment"
)

// stubService implements Service for handler tests.
type stubService struct {
	classifyFn func(ctx context.Context, text string) (*sentiment.Result, error)
	probeFn    func(ctx context.Context) sentiment.HealthStatus
}

func (s *stubService) Classify(ctx context.Context, text string) (*sentiment.Result, error) {
	return s.classifyFn(ctx, text)
}

func (s *stubService) Probe(ctx context.Context) sentiment.HealthStatus {
	if s.probeFn == nil {
		return sentiment.HealthStatus{}
	}
	return s.probeFn(ctx)
}

func testServer(svc Service) *Server {
	return NewServer(Config{Service: svc})
}

func echoClassifier(label sentiment.Sentiment, raw string) *stubService {
	return &stubService{
		classifyFn: func(ctx context.Context, text string) (*sentiment.Result, error) {
			if strings.TrimSpace(text) == "" {
				return nil, sentiment.ErrEmptyText
			}
			return &sentiment.Result{Sentiment: label, Text: text, RawResponse: raw}, nil
		},
	}
}

func postJSON(t *testing.T, server *Server, path, text string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestRootEndpoint(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, "Neutral"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sentiment Analyzer API is running!", resp["message"])
}

func TestAnalyze(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Positive, "Positive"))

	rec := postJSON(t, server, "/analyze/", "I absolutely love this new product!")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp sentiment.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sentiment.Positive, resp.Sentiment)
	assert.Equal(t, "I absolutely love this new product!", resp.Text)
	assert.Equal(t, "Positive", resp.RawResponse)
}

func TestAnalyze_NoTrailingSlash(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Negative, "Negative"))

	rec := postJSON(t, server, "/analyze", "This service is terrible.")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyze_FormEncoded(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Positive, "Positive"))

	form := url.Values{"text": {"great stuff"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp sentiment.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "great stuff", resp.Text)
}

func TestAnalyze_EmptyText(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, ""))

	for _, text := range []string{"", "   "} {
		rec := postJSON(t, server, "/analyze/", text)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "input %q", text)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Text cannot be empty", resp["detail"])
	}
}

func TestAnalyze_InvalidJSON(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, ""))

	req := httptest.NewRequest(http.MethodPost, "/analyze/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_DependencyFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unreachable", ollama.ErrUnavailable, http.StatusServiceUnavailable},
		{"timeout", ollama.ErrTimeout, http.StatusGatewayTimeout},
		{"upstream error", &ollama.StatusError{StatusCode: 500, Detail: "model not loaded"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testServer(&stubService{
				classifyFn: func(ctx context.Context, text string) (*sentiment.Result, error) {
					return nil, tt.err
				},
			})

			rec := postJSON(t, server, "/analyze/", "some text")

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["detail"])
		})
	}
}

func TestHealth(t *testing.T) {
	server := testServer(&stubService{
		probeFn: func(ctx context.Context) sentiment.HealthStatus {
			return sentiment.HealthStatus{
				APIStatus:      sentiment.StatusHealthy,
				OllamaStatus:   sentiment.StatusUnreachable,
				ModelAvailable: false,
				Error:          "connection refused",
			}
		},
	})

	for _, path := range []string{"/health", "/health/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		// Health reports dependency state in the body, never via HTTP status.
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["api_status"])
		assert.Equal(t, "unreachable", resp["ollama_status"])
		assert.Equal(t, false, resp["mistral_available"])
	}
}

func TestCORS(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, ""))

	t.Run("OPTIONS request returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/analyze/", nil)
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("CORS headers on regular request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestIDHeader(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, ""))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	server := NewServer(Config{
		Service:        echoClassifier(sentiment.Neutral, "Neutral"),
		RateLimitRPS:   0.001,
		RateLimitBurst: 1,
	})

	first := postJSON(t, server, "/analyze/", "hello")
	assert.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, server, "/analyze/", "hello again")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := testServer(echoClassifier(sentiment.Neutral, ""))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
