// Package policycache caches policy channel responses in a key-value store.
package policycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/db"
	"github.com/kailas-cloud/lexdex/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "policy_cache:"

var _ domain.PolicyChannel = (*Channel)(nil)

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Channel is a caching decorator around a policy channel. Store failures
// degrade to a pass-through; inner errors are never cached.
type Channel struct {
	inner      domain.PolicyChannel
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
// ttl <= 0 keeps entries forever.
func New(
	inner domain.PolicyChannel,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Channel {
	return &Channel{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Ask returns a cached response or asks the inner channel.
func (c *Channel) Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := cacheKey(systemPrompt, userPrompt)

	if resp, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return resp, nil
	}
	c.incCache("miss")

	resp, err := c.inner.Ask(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	if err := c.store.SetWithTTL(ctx, key, []byte(resp), c.ttl); err != nil {
		c.logger.Warn("Failed to cache policy response", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

// HealthCheck delegates to the inner channel when it supports health checks.
func (c *Channel) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *Channel) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey covers both prompts: the system prompt pins the vendor.
func cacheKey(systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Channel) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached policy response", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(data), true
}
