package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
	"github.com/kailas-cloud/foodrag/internal/metrics"
)

// Groq defaults.
const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-8b-instant"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
	DefaultKeyEnv      = "GROQ_API_KEY"
	DefaultDisplayName = "Groq"
)

// Completer is a chat completion provider using the OpenAI-compatible API (Groq by default).
type Completer struct {
	client      *openai.Client
	configured  bool
	model       string
	temperature float32
	maxTokens   int
	provider    string
	displayName string
	keyEnv      string
	logger      *zap.Logger
}

// Config holds the completion provider settings. Zero values fall back to the Groq defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	// Provider is the metric label, DisplayName the prefix of client-visible errors.
	Provider    string
	DisplayName string
	// KeyEnv names the setting reported when APIKey is empty.
	KeyEnv string
	Logger *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider. A missing API key
// is not an error here; Complete reports it per call.
func NewCompleter(cfg *Config) *Completer {
	baseURL := orDefault(cfg.BaseURL, DefaultBaseURL)
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		configured:  cfg.APIKey != "",
		model:       orDefault(cfg.Model, DefaultModel),
		temperature: temperature,
		maxTokens:   maxTokens,
		provider:    orDefault(cfg.Provider, "groq"),
		displayName: orDefault(cfg.DisplayName, DefaultDisplayName),
		keyEnv:      orDefault(cfg.KeyEnv, DefaultKeyEnv),
		logger:      logger,
	}
}

// Model returns the configured model name.
func (c *Completer) Model() string { return c.model }

// Complete implements domain.Completer: system + user message, top choice text.
func (c *Completer) Complete(ctx context.Context, p prompt.Prompt) (domain.CompletionResult, error) {
	if !c.configured {
		return domain.CompletionResult{}, domain.NewConfigError("%s is not configured", c.keyEnv)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		c.logger.Debug("Completion API call failed", zap.Duration("duration", duration), zap.Error(err))
		return domain.CompletionResult{}, c.parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "empty_response").Inc()
		return domain.CompletionResult{}, domain.NewProviderError(
			domain.ErrCompletionProviderError, c.displayName, http.StatusOK, "empty completion response")
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(usage.CompletionTokens))
	}

	return domain.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if !c.configured {
		return domain.NewConfigError("%s is not configured", c.keyEnv)
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError turns a client error into a domain.ProviderError carrying the
// upstream message. Transport errors keep their cause in the chain.
func (c *Completer) parseAPIError(err error) error {
	kind := domain.ErrCompletionProviderError

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderError(kind, c.displayName, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewProviderError(kind, c.displayName, reqErr.HTTPStatusCode, extractMessage(reqErr.Body))
	}

	return domain.WrapProviderError(kind, c.displayName, err)
}

// extractMessage reads error.message or detail from a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return parsed.Detail
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
