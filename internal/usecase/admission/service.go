// Package admission decides whether the best-matching article title may be
// released for a question.
package admission

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/criterion"
	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
	"github.com/kailas-cloud/lexdex/internal/metrics"
)

// FallbackResponse is returned instead of a title when the gate rejects.
const FallbackResponse = "Rejected question"

// BackgroundQueryKey names the background entry appended to the search query.
const BackgroundQueryKey = "slate"

// Decision is the outcome of one admission evaluation.
type Decision struct {
	Answer   string
	Released bool
	Selected domrank.Row
	Outcomes criterion.Outcomes
	Query    string
}

// Service ranks a question against the corpus and gates the answer on the
// policy channel's verdicts.
type Service struct {
	ranker  Ranker
	channel domain.PolicyChannel
	vendor  vendor.Vendor
	logger  *zap.Logger
}

// New creates an admission service.
func New(ranker Ranker, channel domain.PolicyChannel, v vendor.Vendor, logger *zap.Logger) *Service {
	return &Service{ranker: ranker, channel: channel, vendor: v, logger: logger}
}

// Vendor returns the configured vendor.
func (s *Service) Vendor() vendor.Vendor { return s.vendor }

// Evaluate answers question. The search query is the question with
// background["slate"] appended verbatim; the policy channel sees only the
// question. A channel failure aborts with an error; a response without
// recognisable verdicts is rejected.
func (s *Service) Evaluate(ctx context.Context, question string, background map[string]string) (Decision, error) {
	query := question + background[BackgroundQueryKey]

	top, _, err := s.ranker.Top(ctx, query)
	if err != nil {
		metrics.AdmissionDecisionsTotal.WithLabelValues(string(s.vendor), "error").Inc()
		return Decision{}, fmt.Errorf("rank: %w", err)
	}

	resp, err := s.channel.Ask(ctx, s.vendor.SystemPrompt(), question)
	if err != nil {
		metrics.AdmissionDecisionsTotal.WithLabelValues(string(s.vendor), "error").Inc()
		return Decision{}, fmt.Errorf("policy check: %w", err)
	}
	outcomes := criterion.Parse(resp)

	d := Decision{
		Answer:   FallbackResponse,
		Selected: top,
		Outcomes: outcomes,
		Query:    query,
	}
	if outcomes.AnyPassed(s.vendor.GateCriteria()...) {
		d.Answer = top.ArticleTitle
		d.Released = true
	}

	outcome := "rejected"
	if d.Released {
		outcome = "released"
	}
	metrics.AdmissionDecisionsTotal.WithLabelValues(string(s.vendor), outcome).Inc()

	s.logger.Debug("Admission decision",
		zap.String("vendor", string(s.vendor)),
		zap.String("outcome", outcome),
		zap.Int("doc_index", top.DocIndex),
		zap.String("article_title", top.ArticleTitle),
		zap.Int("similarity", top.TruncatedSimilarity()),
		zap.Any("criteria", outcomes.Strings()),
	)
	return d, nil
}
