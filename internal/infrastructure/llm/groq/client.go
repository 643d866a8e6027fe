// Package groq provides the chat-completion client for the Groq API,
// which speaks the OpenAI-compatible wire protocol.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/ports/outbound"
	apperrors "github.com/nutriplan/mealengine/pkg/errors"
)

const (
	providerName = "groq"

	completionsPath = "/openai/v1/chat/completions"

	// DefaultTemperature and DefaultMaxTokens apply when the caller
	// leaves options unset.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000

	attemptTimeout = 30 * time.Second
	maxAttempts    = 3
)

// backoffSchedule is the wait before retry attempt n+1.
var backoffSchedule = []time.Duration{
	100 * time.Millisecond,
	400 * time.Millisecond,
	1600 * time.Millisecond,
}

// Config holds client configuration
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client issues chat-completion requests with bearer-token auth, per-attempt
// timeouts, and retry on transient failures. It returns raw assistant text
// and never interprets the body beyond the completion envelope.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Groq client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3-8b-8192"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: attemptTimeout,
		},
		logger: logger.Named("groq-client"),
	}
}

// Groq API structures (OpenAI-compatible)

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Model returns the configured default model.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the provider base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete sends the prompt and returns the raw assistant text.
// Transient failures are retried with exponential backoff; auth failures
// fail immediately.
func (c *Client) Complete(ctx context.Context, prompt string, opts outbound.CompletionOptions) (string, error) {
	if opts.Model == "" {
		opts.Model = c.model
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	if temperature < 0 {
		temperature = 0
	}
	if temperature > 1 {
		temperature = 1
	}
	opts.Temperature = &temperature
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", apperrors.NewUpstreamTimeoutError(providerName, ctx.Err())
			case <-time.After(backoffSchedule[attempt-1]):
			}
		}

		text, err := c.doAttempt(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && !appErr.IsRetryable() {
			return "", err
		}

		c.logger.Warn("completion attempt failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return "", lastErr
}

// doAttempt performs a single HTTP round-trip.
func (c *Client) doAttempt(ctx context.Context, prompt string, opts outbound.CompletionOptions) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	reqBody := chatCompletionRequest{
		Model: opts.Model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Temperature: *opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.NewInternalError("failed to marshal completion request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+completionsPath, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperrors.NewInternalError("failed to create completion request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if attemptCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.NewUpstreamTimeoutError(providerName, err)
		}
		return "", apperrors.NewUpstreamUnavailableError(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamUnavailableError(providerName, err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", apperrors.NewUpstreamUnavailableError(providerName, fmt.Errorf("malformed completion envelope: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return "", apperrors.NewUpstreamUnavailableError(providerName, errors.New("no completion choices returned"))
	}

	c.logger.Debug("completion successful",
		zap.String("model", opts.Model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	return chatResp.Choices[0].Message.Content, nil
}

// classifyStatus maps an HTTP status to the upstream error taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized:
		return apperrors.NewUpstreamAuthError(providerName)
	case status == http.StatusForbidden:
		return apperrors.NewUpstreamForbiddenError(providerName)
	case status == http.StatusTooManyRequests:
		return apperrors.NewUpstreamRateLimitedError(providerName)
	case status >= 500:
		return apperrors.NewUpstreamUnavailableError(providerName,
			fmt.Errorf("server error %d: %s", status, truncate(body, 200)))
	default:
		return apperrors.NewAppError(apperrors.CodeInternal,
			"Unexpected upstream response",
			fmt.Sprintf("status %d: %s", status, truncate(body, 200)),
		)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
