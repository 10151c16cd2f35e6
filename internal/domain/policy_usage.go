package domain

import "context"

type policyUsageKey struct{}

// PolicyUsage collects policy channel token usage for a single request.
// The caller puts a mutable pointer into the context before asking the channel;
// the channel writes after a completion; the caller reads it back.
type PolicyUsage struct {
	TotalTokens int
	Used        bool // true if the channel was reached, even with 0 tokens
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *PolicyUsage) {
	u := &PolicyUsage{}
	return context.WithValue(ctx, policyUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *PolicyUsage {
	u, _ := ctx.Value(policyUsageKey{}).(*PolicyUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *PolicyUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
