package domain

import "context"

// PolicyChannel turns a system/user prompt pair into free text.
// Implementations must be deterministic for a given user prompt.
type PolicyChannel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HealthChecker verifies policy channel availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// KeyPrefix namespaces every key lexdex writes to a shared KV store.
const KeyPrefix = "lexdex:"
