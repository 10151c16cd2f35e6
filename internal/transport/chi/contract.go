package chi

import (
	"context"

	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	domusage "github.com/kailas-cloud/lexdex/internal/domain/usage"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
	"github.com/kailas-cloud/lexdex/internal/repository/artifact"
	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
	"github.com/kailas-cloud/lexdex/internal/usecase/catalog"
	"github.com/kailas-cloud/lexdex/internal/usecase/health"
)

// Admitter evaluates questions against the admission gate.
type Admitter interface {
	Evaluate(ctx context.Context, question string, background map[string]string) (admission.Decision, error)
	Vendor() vendor.Vendor
}

// Searcher scores the corpus against a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domrank.Row, error)
}

// Reloader republishes the persisted index.
type Reloader interface {
	Reload(ctx context.Context) (artifact.Manifest, error)
	Info() (catalog.Info, bool)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) health.Report
}

// UsageReporter reports policy channel token usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
