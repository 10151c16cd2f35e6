// Package budget holds a point-in-time view of a policy channel token budget.
package budget

// Budget is the budget state for one period. The zero value is an
// unlimited budget that never resets.
type Budget struct {
	limit     int64
	remaining int64
	resetsAt  int64 // unix millis
}

// New snapshots a budget. A non-positive limit means unlimited and the
// remaining count is then ignored.
func New(limit, remaining, resetsAt int64) Budget {
	if limit <= 0 {
		return Budget{remaining: -1, resetsAt: resetsAt}
	}
	return Budget{limit: limit, remaining: min(max(remaining, 0), limit), resetsAt: resetsAt}
}

// Unlimited reports whether no cap is configured.
func (b Budget) Unlimited() bool { return b.limit == 0 }

// TokensLimit returns the token cap, 0 if unlimited.
func (b Budget) TokensLimit() int64 { return b.limit }

// TokensRemaining returns tokens left, -1 if unlimited.
func (b Budget) TokensRemaining() int64 {
	if b.Unlimited() {
		return -1
	}
	return b.remaining
}

// IsExhausted reports whether a capped budget has nothing left.
func (b Budget) IsExhausted() bool { return !b.Unlimited() && b.remaining == 0 }

// Utilization returns the spent fraction of the cap in [0, 1], 0 if unlimited.
func (b Budget) Utilization() float64 {
	if b.Unlimited() {
		return 0
	}
	return float64(b.limit-b.remaining) / float64(b.limit)
}

// ResetsAt returns when the period rolls over (unix millis), 0 if never.
func (b Budget) ResetsAt() int64 { return b.resetsAt }
