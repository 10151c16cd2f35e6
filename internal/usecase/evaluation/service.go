// Package evaluation scores the admission pipeline against a labelled dataset.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domeval "github.com/kailas-cloud/lexdex/internal/domain/evaluation"
)

// Metric names reported by Run.
const (
	MetricOverall    = "accuracy - overall"
	MetricPositive   = "accuracy - positive"
	MetricNegative   = "accuracy - negative"
	MetricBackground = "accuracy - background awareness"
)

// Result is the outcome of one example.
type Result struct {
	Example  domeval.Example `yaml:",inline"`
	Actual   string          `yaml:"actual_response"`
	Correct  bool            `yaml:"is_correct"`
	Released bool            `yaml:"released"`
}

// Report summarises a run. A metric is nil when no example falls in its group.
type Report struct {
	RunID     string              `yaml:"run_id"`
	Vendor    string              `yaml:"vendor"`
	StartedAt time.Time           `yaml:"started_at"`
	Duration  time.Duration       `yaml:"duration"`
	Examples  int                 `yaml:"examples"`
	Metrics   map[string]*float64 `yaml:"metrics"`
	Results   []Result            `yaml:"results,omitempty"`
}

// Service runs evaluations.
type Service struct {
	evaluator Evaluator
	vendor    string
	logger    *zap.Logger
}

// New creates an evaluation service.
func New(evaluator Evaluator, vendor string, logger *zap.Logger) *Service {
	return &Service{evaluator: evaluator, vendor: vendor, logger: logger}
}

// Run evaluates every example in order. An example is correct when the
// actual answer equals the expected response exactly. Any pipeline error
// aborts the run.
func (s *Service) Run(ctx context.Context, examples []domeval.Example) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		Vendor:    s.vendor,
		StartedAt: time.Now().UTC(),
		Examples:  len(examples),
		Results:   make([]Result, 0, len(examples)),
	}
	log := s.logger.With(zap.String("run_id", report.RunID))

	for i, ex := range examples {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("evaluation cancelled: %w", err)
		}
		d, err := s.evaluator.Evaluate(ctx, ex.Question, ex.Background)
		if err != nil {
			return Report{}, fmt.Errorf("example %d: %w", i, err)
		}
		r := Result{
			Example:  ex,
			Actual:   d.Answer,
			Correct:  d.Answer == ex.ExpectedResponse,
			Released: d.Released,
		}
		report.Results = append(report.Results, r)
		log.Debug("Example evaluated",
			zap.Int("row", i),
			zap.Bool("correct", r.Correct),
			zap.String("actual", r.Actual),
			zap.String("expected", ex.ExpectedResponse),
		)
	}

	report.Metrics = Score(report.Results)
	report.Duration = time.Since(report.StartedAt)
	log.Info("Evaluation finished",
		zap.Int("examples", report.Examples),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// Score computes the accuracy metrics over results.
func Score(results []Result) map[string]*float64 {
	return map[string]*float64{
		MetricOverall: accuracy(results, func(Result) bool { return true }),
		MetricPositive: accuracy(results, func(r Result) bool {
			return r.Example.ExpectedResponseType == domeval.Positive
		}),
		MetricNegative: accuracy(results, func(r Result) bool {
			return r.Example.ExpectedResponseType == domeval.Negative
		}),
		MetricBackground: accuracy(results, func(r Result) bool {
			return len(r.Example.Background) > 0
		}),
	}
}

func accuracy(results []Result, mask func(Result) bool) *float64 {
	var total, correct int
	for _, r := range results {
		if !mask(r) {
			continue
		}
		total++
		if r.Correct {
			correct++
		}
	}
	if total == 0 {
		return nil
	}
	acc := float64(correct) / float64(total)
	return &acc
}
