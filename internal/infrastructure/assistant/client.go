// Package assistant talks to an OpenAI-compatible chat completion API.
package assistant

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

	app "github.com/autodealer/backend/internal/application/assistant"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 20 * time.Second
	maxResponseBytes = 1 << 20
)

// ErrNotConfigured is returned when no endpoint is set
var ErrNotConfigured = errors.New("assistant: endpoint not configured")

// Client calls POST {endpoint}/chat/completions
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a completion client from configuration
func NewClient(cfg config.AssistantConfig, logger *zap.Logger) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		return nil, errors.New("assistant: model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete returns the content of the first choice
func (c *Client) Complete(ctx context.Context, messages []app.Message) (string, error) {
	body := completionRequest{
		Model:    c.model,
		Messages: make([]completionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, completionMessage{Role: m.Role, Content: m.Content})
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("assistant: failed to encode request: %w", err)
	}

	respBody, err := c.doRequest(ctx, bodyBytes)
	if err != nil {
		return "", err
	}

	var resp completionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("assistant: failed to decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("assistant: failed to read response: %w", err)
	}
	c.logger.Debug("Assistant completion",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("assistant: HTTP %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("assistant: HTTP %d", resp.StatusCode)
	}
	return respBody, nil
}

var _ app.Completer = (*Client)(nil)
