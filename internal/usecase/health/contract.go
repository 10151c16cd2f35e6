package health

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/lexical"
)

// IndexSource yields the published index.
type IndexSource interface {
	Current() (*lexical.Index, error)
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker checks policy channel availability.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}
