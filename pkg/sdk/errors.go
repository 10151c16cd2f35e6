package lexdex

import "github.com/kailas-cloud/lexdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration = domain.ErrConfiguration
	ErrNotIndexed    = domain.ErrNotIndexed
	ErrPolicyChannel = domain.ErrPolicyChannel
)
