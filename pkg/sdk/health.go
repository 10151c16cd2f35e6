package lexdex

import (
	"context"

	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
)

// HealthStatus is the aggregated state of the client and its policy channel.
type HealthStatus struct {
	Status string            // "ok", "degraded" or "error"
	Checks map[string]string // component -> "ok"/"error"

	// Articles and Fingerprint describe the fitted index. Both are zero
	// when no index is available.
	Articles    int
	Fingerprint string
}

// Ready reports whether questions can be answered, possibly with a degraded policy channel.
func (h HealthStatus) Ready() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Health checks the index and, when it supports it, the policy channel.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}
	if report.Index != nil {
		h.Articles = report.Index.Articles
		h.Fingerprint = report.Index.Fingerprint
	}
	return h
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
