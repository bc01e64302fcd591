package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sentiment-analyzer/internal/ollama"
)

// ErrEmptyText is returned when the request text is empty or whitespace-only.
// It is rejected before any inference call is made.
var ErrEmptyText = errors.New("text cannot be empty")

// InferenceClient is the service's view of the model backend.
type InferenceClient interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Result is the outcome of a single classification. It is request-scoped and
// never persisted.
type Result struct {
	Sentiment   Sentiment `json:"sentiment"`
	Text        string    `json:"text"`
	RawResponse string    `json:"raw_response"`
}

// Health status values.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusConnected   = "connected"
	StatusUnreachable = "unreachable"
)

// HealthStatus reports the state of the service and its inference dependency.
// It is recomputed on every probe; dependency state may change between calls.
// The mistral_available key is part of the external contract even though the
// model name is configurable.
type HealthStatus struct {
	APIStatus      string `json:"api_status"`
	OllamaStatus   string `json:"ollama_status"`
	ModelAvailable bool   `json:"mistral_available"`
	Error          string `json:"error,omitempty"`
}

// Service orchestrates prompt construction, inference, and normalization.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	client InferenceClient
	model  string
}

// NewService creates a classification service backed by client using model.
func NewService(client InferenceClient, model string) *Service {
	return &Service{
		client: client,
		model:  model,
	}
}

// Model returns the configured model identifier.
func (s *Service) Model() string {
	return s.model
}

// Classify runs one inference call for text and normalizes the reply. An
// inference failure propagates typed; it is never converted into a fabricated
// label, so callers can distinguish "neutral" from "could not be analyzed".
func (s *Service) Classify(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	raw, err := s.client.Generate(ctx, s.model, BuildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	raw = strings.TrimSpace(raw)
	return &Result{
		Sentiment:   Normalize(raw),
		Text:        text,
		RawResponse: raw,
	}, nil
}

// Probe checks reachability of the inference endpoint and presence of the
// configured model. It never returns an error: transport failures collapse
// into the status fields. api_status reports this service's own liveness, not
// the dependency's, and only turns degraded when the prober itself faults.
func (s *Service) Probe(ctx context.Context) HealthStatus {
	status := HealthStatus{
		APIStatus:    StatusHealthy,
		OllamaStatus: StatusUnreachable,
	}

	models, err := s.client.ListModels(ctx)
	if err != nil {
		status.Error = err.Error()
		if !isDependencyError(err) {
			status.APIStatus = StatusDegraded
		}
		return status
	}

	status.OllamaStatus = StatusConnected
	for _, name := range models {
		// Tags come back qualified ("mistral:latest"), so match on prefix.
		if strings.HasPrefix(name, s.model) {
			status.ModelAvailable = true
			break
		}
	}
	return status
}

// isDependencyError reports whether err originates from the dependency rather
// than from the prober itself.
func isDependencyError(err error) bool {
	var statusErr *ollama.StatusError
	return errors.Is(err, ollama.ErrUnavailable) ||
		errors.Is(err, ollama.ErrTimeout) ||
		errors.As(err, &statusErr)
}
