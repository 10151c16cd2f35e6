package usage

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/usage/budget"
)

func TestNewReport(t *testing.T) {
	b := budget.New(1000000, 615800, 1700000000000)

	r := NewReport(PeriodMonth, 1700000000, 1702600000, "openai", 384200, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 || r.PeriodEnd() != 1702600000 {
		t.Errorf("period = [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Channel() != "openai" {
		t.Errorf("Channel() = %q", r.Channel())
	}
	if r.TokensUsed() != 384200 {
		t.Errorf("TokensUsed() = %d", r.TokensUsed())
	}
	if r.Budget().TokensLimit() != 1000000 {
		t.Errorf("Budget().TokensLimit() = %d", r.Budget().TokensLimit())
	}
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]Period{"": PeriodMonth, "day": PeriodDay, "month": PeriodMonth, "total": PeriodTotal}
	for in, want := range tests {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParsePeriod("week"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("ParsePeriod(week) err = %v", err)
	}
}
