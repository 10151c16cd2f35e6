package lexdex

import (
	"context"

	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
)

// --- PolicyChannel mock ---

type mockPolicy struct {
	fn      func(ctx context.Context, system, user string) (string, error)
	healthy error
}

func (m *mockPolicy) Ask(ctx context.Context, system, user string) (string, error) {
	return m.fn(ctx, system, user)
}

func (m *mockPolicy) HealthCheck(context.Context) error { return m.healthy }

// --- admissionUseCase mock ---

type mockAdmissionUC struct {
	evaluateFn func(ctx context.Context, q string, bg map[string]string) (admission.Decision, error)
}

func (m *mockAdmissionUC) Evaluate(ctx context.Context, q string, bg map[string]string) (admission.Decision, error) {
	return m.evaluateFn(ctx, q, bg)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, query string) ([]domrank.Row, error)
}

func (m *mockSearchUC) Search(ctx context.Context, query string) ([]domrank.Row, error) {
	return m.searchFn(ctx, query)
}

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	buildFn func(ctx context.Context) (*lexical.Index, error)
}

func (m *mockCatalogUC) Build(ctx context.Context) (*lexical.Index, error) {
	return m.buildFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
