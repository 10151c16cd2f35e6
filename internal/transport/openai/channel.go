package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

const channelLabel = "openai"

var _ domain.PolicyChannel = (*Channel)(nil)

// Channel is a policy channel backed by an OpenAI-compatible chat completion API.
type Channel struct {
	client    *openai.Client
	model     string
	user      string
	maxTokens int
	logger    *zap.Logger
}

// Config holds the chat completion settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	User      string
	MaxTokens int
	Logger    *zap.Logger
}

// NewChannel creates an OpenAI-compatible policy channel.
func NewChannel(cfg *Config) *Channel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Channel{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		user:      cfg.User,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Ask sends the prompts as a two-message chat at temperature 0 and returns
// the first choice.
func (c *Channel) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0,
		User:        c.user,
	}
	if c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.PolicyRequestsTotal.WithLabelValues(channelLabel, c.model, "error").Inc()
		metrics.PolicyErrorsTotal.WithLabelValues(channelLabel, c.model, "api_error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.PolicyRequestsTotal.WithLabelValues(channelLabel, c.model, "error").Inc()
		metrics.PolicyErrorsTotal.WithLabelValues(channelLabel, c.model, "empty_response").Inc()
		return "", fmt.Errorf("empty chat completion response: %w", domain.ErrPolicyChannel)
	}

	domain.UsageFromContext(ctx).AddTokens(resp.Usage.TotalTokens)

	metrics.PolicyRequestsTotal.WithLabelValues(channelLabel, c.model, "success").Inc()
	metrics.PolicyRequestDuration.WithLabelValues(channelLabel, c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.PolicyTokensTotal.WithLabelValues(channelLabel, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.PolicyTokensTotal.WithLabelValues(channelLabel, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	c.logger.Debug("Policy channel answered",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Channel) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrPolicyChannel for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrPolicyChannel

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("chat request aborted: %w: %w", err, wrap)
	}
	return fmt.Errorf("chat request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
