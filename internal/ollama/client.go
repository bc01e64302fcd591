// Package ollama is an HTTP client for a local Ollama server. It covers the
// two endpoints the service needs: /api/generate for classification and
// /api/tags for the health probe.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the default base URL for a local Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// Transport failures are translated into these sentinel errors so callers can
// map them without inspecting net internals.
var (
	// ErrUnavailable means the server could not be reached at all.
	ErrUnavailable = errors.New("ollama unreachable")
	// ErrTimeout means the server did not answer within the request deadline.
	ErrTimeout = errors.New("ollama request timed out")
)

// StatusError is returned when Ollama was reachable but answered with a
// non-success status.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("ollama returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ollama returned status %d: %s", e.StatusCode, e.Detail)
}

// Client talks to an Ollama server. The underlying http.Client supports
// overlapping in-flight calls, so a single Client is safe for concurrent use.
type Client struct {
	baseURL     string
	genClient   *http.Client
	probeClient *http.Client
}

// NewClient returns a client for the Ollama API at baseURL. If baseURL is
// empty, DefaultBaseURL is used. timeout bounds generate calls; probeTimeout
// bounds tags calls.
func NewClient(baseURL string, timeout, probeTimeout time.Duration) *Client {
	u := strings.TrimSuffix(baseURL, "/")
	if u == "" {
		u = DefaultBaseURL
	}
	return &Client{
		baseURL:     u,
		genClient:   &http.Client{Timeout: timeout},
		probeClient: &http.Client{Timeout: probeTimeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions biases the model toward a short single-word answer.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []modelInfo `json:"models"`
}

type modelInfo struct {
	Name string `json:"name"`
}

// Generate sends prompt to model and returns the raw generated text. A single
// attempt is made; retry policy belongs to the caller.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.1,
			TopP:        0.9,
			NumPredict:  10,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.genClient.Do(req)
	if err != nil {
		return "", translateTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(resp)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Response, nil
}

// ListModels returns the names of the models the server has available.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp)
	}

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, len(result.Models))
	for i, m := range result.Models {
		names[i] = m.Name
	}
	return names, nil
}

// translateTransportError maps http.Client errors onto the package's sentinel
// errors. Timeouts (client deadline or context deadline) become ErrTimeout,
// everything else becomes ErrUnavailable.
func translateTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func newStatusError(resp *http.Response) *StatusError {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Detail:     strings.TrimSpace(string(detail)),
	}
}
