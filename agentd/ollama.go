package agentd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaResponder generates replies with an Ollama-compatible
// /api/generate endpoint, non-streaming.
type OllamaResponder struct {
	baseURL string
	model   string
	http    *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaResponder creates a responder for the server at baseURL, for
// example http://localhost:11434. A nil client uses http.DefaultClient.
func NewOllamaResponder(baseURL, model string, client *http.Client) *OllamaResponder {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaResponder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    client,
	}
}

func (r *OllamaResponder) Respond(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(generateRequest{Model: r.model, Prompt: p.Text})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrResponder, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrResponder, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResponder, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrResponder, err)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d", ErrResponder, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrResponder, err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != "" {
		return "", fmt.Errorf("%w: status %d: %s", ErrResponder, resp.StatusCode, out.Error)
	}

	return strings.TrimSpace(out.Response), nil
}
