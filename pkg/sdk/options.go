package lexdex

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// PolicyChannel answers the policy-check prompt with free text containing
// NAME-PASS / NAME-FAIL verdicts.
type PolicyChannel interface {
	Ask(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	articles []Article

	vendor      string
	selection   Selection
	titleWeight *int
	ngramMax    int
	maxDF       float64

	policy      PolicyChannel
	policyTable map[string]string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithArticles sets the corpus. Required.
func WithArticles(articles []Article) Option {
	return optionFunc(func(c *clientConfig) {
		c.articles = append([]Article(nil), articles...)
	})
}

// WithVendor selects the policy profile: "PCTY" (default) or "PCTY2".
func WithVendor(vendor string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vendor = vendor
	})
}

// WithSelection sets the top-row selection rule. Default: SelectionPosition.
func WithSelection(s Selection) Option {
	return optionFunc(func(c *clientConfig) {
		c.selection = s
	})
}

// WithTitleWeight sets how many extra times each title is repeated when
// fitting. Default: 3.
func WithTitleWeight(w int) Option {
	return optionFunc(func(c *clientConfig) {
		c.titleWeight = &w
	})
}

// WithNGramMax sets the longest n-gram indexed. Default: 2.
func WithNGramMax(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ngramMax = n
	})
}

// WithMaxDF drops terms found in more than this fraction of articles.
// Default: 0.95.
func WithMaxDF(df float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxDF = df
	})
}

// WithPolicyChannel sets the policy check backend.
func WithPolicyChannel(ch PolicyChannel) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy = ch
	})
}

// WithPolicyTable uses a fixed question -> response table as the policy
// channel. Ignored when WithPolicyChannel is also given.
func WithPolicyTable(responses map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.policyTable = responses
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
