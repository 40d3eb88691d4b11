package datagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the OpenAI API base URL.
const DefaultEndpoint = "https://api.openai.com"

const maxImageAttempts = 3

// Generator produces recipe text and cover images.
type Generator interface {
	// ChatJSON asks the chat model for a JSON object and decodes it into out.
	ChatJSON(ctx context.Context, system, user string, out any) error
	// GenerateImage returns the encoded bytes of an image for prompt.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// OpenAIClient talks to an OpenAI compatible chat and image API. All
// requests share one rate limiter.
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	chatModel  string
	imageModel string
	imageSize  string
	client     *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewOpenAIClient builds a client for endpoint (DefaultEndpoint when empty).
func NewOpenAIClient(apiKey, endpoint string, opts Options) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY must be set")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		chatModel:  opts.ChatModel,
		imageModel: opts.ImageModel,
		imageSize:  opts.ImageSize,
		client:     &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retryDelay: time.Second,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON implements Generator.
func (c *OpenAIClient) ChatJSON(ctx context.Context, system, user string, out any) error {
	reqBody := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	}

	var result chatResponse
	if err := c.post(ctx, "/v1/chat/completions", reqBody, &result); err != nil {
		return err
	}
	if len(result.Choices) == 0 {
		return errors.New("no response from API")
	}
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage implements Generator. Failed attempts are retried with a
// growing delay.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxImageAttempts; attempt++ {
		img, err := c.generateImageAttempt(ctx, prompt)
		if err == nil {
			return img, nil
		}
		lastErr = err
		log.Warn().Str("component", "datagen").Err(err).
			Int("attempt", attempt).Int("max_attempts", maxImageAttempts).
			Msg("image generation attempt failed")

		if attempt < maxImageAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to generate image after %d attempts: %w", maxImageAttempts, lastErr)
}

func (c *OpenAIClient) generateImageAttempt(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := imageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           c.imageSize,
		ResponseFormat: "b64_json",
	}

	var result imageResponse
	if err := c.post(ctx, "/v1/images/generations", reqBody, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, errors.New("no image data in API response")
	}
	img, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return img, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
