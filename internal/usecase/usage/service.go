package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/lexdex/internal/domain/usage"
	"github.com/kailas-cloud/lexdex/internal/domain/usage/budget"
)

// Service reports policy channel token usage.
type Service struct {
	channel string
	br      BudgetReader
	now     func() time.Time
}

// New creates a Service for the named channel. br may be nil (unlimited, untracked).
func New(channel string, br BudgetReader) *Service {
	return &Service{
		channel: channel,
		br:      br,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetReport builds a usage report for the given period. The total period
// reports the monthly counters, the longest window kept.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now()
	var start, end int64
	var limit, used int64
	remaining := int64(-1)

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	default:
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	}

	return domusage.NewReport(period, start, end, s.channel, used, budget.New(limit, remaining, end))
}
