// Package budget enforces daily and monthly token caps on the policy channel.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
)

// Action defines behavior when the token budget is spent.
type Action string

const (
	// ActionWarn logs a warning and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrPolicyQuotaExceeded.
	ActionReject Action = "reject"
)

// Store persists token counters. IncrBy may be called repeatedly for a key.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Limits configures a Tracker. A zero limit means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// Tracker counts policy channel tokens in memory with optional write-behind persistence.
// Check never leaves the process; Record updates memory first, then the store.
type Tracker struct {
	mu          sync.Mutex
	channel     string
	limits      Limits
	dailyUsed   int64
	monthlyUsed int64
	day         time.Time
	month       time.Time
	store       Store
	now         func() time.Time
	logger      *zap.Logger
}

// NewTracker creates a tracker for the named channel.
func NewTracker(channel string, limits Limits, logger *zap.Logger) *Tracker {
	t := &Tracker{
		channel: channel,
		limits:  limits,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
	now := t.now()
	t.day, t.month = startOfDay(now), startOfMonth(now)
	return t
}

// WithStore attaches persistence and seeds the counters from it.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = store
	now := t.now()

	if v, err := store.Get(ctx, t.key("daily", now)); err == nil {
		t.dailyUsed = v
	} else {
		t.logger.Warn("Failed to load daily policy budget", zap.Error(err))
	}
	if v, err := store.Get(ctx, t.key("monthly", now)); err == nil {
		t.monthlyUsed = v
	} else {
		t.logger.Warn("Failed to load monthly policy budget", zap.Error(err))
	}

	t.logger.Info("Policy budget loaded",
		zap.String("channel", t.channel),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthlyUsed),
	)
	return t
}

// Channel returns the channel label the tracker counts for.
func (t *Tracker) Channel() string { return t.channel }

// Check reports whether a new request may reach the channel.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover()

	dailyOver := t.limits.Daily > 0 && t.dailyUsed >= t.limits.Daily
	monthlyOver := t.limits.Monthly > 0 && t.monthlyUsed >= t.limits.Monthly
	if !dailyOver && !monthlyOver {
		return nil
	}

	if t.limits.Action == ActionReject {
		return fmt.Errorf("%s: %w", t.channel, domain.ErrPolicyQuotaExceeded)
	}

	t.logger.Warn("Policy token budget exceeded",
		zap.String("channel", t.channel),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.limits.Daily),
		zap.Int64("monthly_used", t.monthlyUsed),
		zap.Int64("monthly_limit", t.limits.Monthly),
	)
	return nil
}

// Record adds consumed tokens, then persists them if a store is attached.
func (t *Tracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	t.mu.Lock()
	t.rollover()
	t.dailyUsed += tokens
	t.monthlyUsed += tokens
	store := t.store
	now := t.now()
	t.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request so a cancelled caller still gets counted.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, period := range []string{"daily", "monthly"} {
		key := t.key(period, now)
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			t.logger.Warn("Failed to persist policy budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// DailyLimit returns the daily token cap (0 if unlimited).
func (t *Tracker) DailyLimit() int64 { return t.limits.Daily }

// MonthlyLimit returns the monthly token cap (0 if unlimited).
func (t *Tracker) MonthlyLimit() int64 { return t.limits.Monthly }

// DailyUsed returns tokens consumed today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.monthlyUsed
}

// RemainingDaily returns tokens left today, -1 if unlimited.
func (t *Tracker) RemainingDaily() int64 {
	return remaining(t.limits.Daily, t.DailyUsed())
}

// RemainingMonthly returns tokens left this month, -1 if unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	return remaining(t.limits.Monthly, t.MonthlyUsed())
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

// key formats lexdex:budget:{channel}:{period}:{stamp}.
func (t *Tracker) key(period string, at time.Time) string {
	stamp := at.Format("2006-01")
	if period == "daily" {
		stamp = at.Format("2006-01-02")
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, t.channel, period, stamp)
}

// rollover zeroes counters when the day or month changes. Caller holds mu.
func (t *Tracker) rollover() {
	now := t.now()
	if day := startOfDay(now); day.After(t.day) {
		t.dailyUsed = 0
		t.day = day
	}
	if month := startOfMonth(now); month.After(t.month) {
		t.monthlyUsed = 0
		t.month = month
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
