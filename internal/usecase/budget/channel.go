package budget

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

// Checker is the local interface for budget enforcement.
type Checker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

var (
	_ domain.PolicyChannel = (*Channel)(nil)
	_ domain.HealthChecker = (*Channel)(nil)
)

// Channel wraps a policy channel with token budget enforcement.
// Transport metrics stay in the wrapped channel; this layer owns the budget gauge.
type Channel struct {
	inner  domain.PolicyChannel
	label  string
	budget Checker
	logger *zap.Logger
}

// NewChannel wraps inner. label names the channel in logs and metrics.
func NewChannel(inner domain.PolicyChannel, label string, budget Checker, logger *zap.Logger) *Channel {
	return &Channel{inner: inner, label: label, budget: budget, logger: logger}
}

// Ask checks the budget, delegates, and records the tokens the inner channel reported.
func (c *Channel) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.budget.Check(ctx); err != nil {
		c.logger.Error("Policy budget exceeded", zap.String("channel", c.label), zap.Error(err))
		return "", fmt.Errorf("budget check: %w", err)
	}

	callCtx, usage := domain.NewContextWithUsage(ctx)
	start := time.Now()

	answer, err := c.inner.Ask(callCtx, systemPrompt, userPrompt)

	// Tokens are spent even when the answer is unusable.
	c.record(usage.TotalTokens)
	domain.UsageFromContext(ctx).AddTokens(usage.TotalTokens)

	if err != nil {
		return "", err
	}

	c.logger.Debug("Budgeted policy request completed",
		zap.String("channel", c.label),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return answer, nil
}

// HealthCheck delegates to the wrapped channel when it supports it.
func (c *Channel) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *Channel) record(tokens int) {
	if tokens <= 0 {
		return
	}
	c.budget.Record(int64(tokens))
	gauge := metrics.PolicyBudgetTokensRemaining
	gauge.WithLabelValues(c.label, "daily").Set(float64(c.budget.RemainingDaily()))
	gauge.WithLabelValues(c.label, "monthly").Set(float64(c.budget.RemainingMonthly()))
}
