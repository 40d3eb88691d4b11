// Package embedding turns text into vectors and finds recipes whose stored
// vectors lie near a query vector.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageza/recipe-catalog/backend/internal/metrics"
)

// ErrUnavailable means no embedding provider is configured.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Provider produces an embedding vector for a piece of text.
type Provider interface {
	Embed(ctx context.Context, deployment, text string) ([]float32, error)
}

// DefaultEndpoint is used when no endpoint is configured.
const DefaultEndpoint = "https://api.openai.com"

// OpenAIProvider calls an OpenAI compatible /v1/embeddings endpoint.
type OpenAIProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenAIProvider returns ErrUnavailable when apiKey is empty.
func NewOpenAIProvider(apiKey, endpoint string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrUnavailable
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &OpenAIProvider{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Embed(ctx context.Context, deployment, text string) (vec []float32, err error) {
	start := time.Now()
	defer func() { metrics.ObserveEmbedding(start, err) }()

	jsonData, err := json.Marshal(embeddingRequest{Model: deployment, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/v1/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding in response")
	}
	return result.Data[0].Embedding, nil
}
