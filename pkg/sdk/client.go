package lexdex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/article"
	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/repository/corpus"
	"github.com/kailas-cloud/lexdex/internal/repository/policy/table"
	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
	"github.com/kailas-cloud/lexdex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/lexdex/internal/usecase/ranking"
)

// Internal interfaces, swapped out in tests.
type admissionUseCase interface {
	Evaluate(ctx context.Context, question string, background map[string]string) (admission.Decision, error)
}

type searchUseCase interface {
	Search(ctx context.Context, query string) ([]domrank.Row, error)
}

type catalogUseCase interface {
	Build(ctx context.Context) (*lexical.Index, error)
}

// Client is the lexdex SDK entry point. It is safe for concurrent use.
type Client struct {
	// rebuildMu keeps the corpus swap, the refit and any restore atomic
	// with respect to other rebuilds.
	rebuildMu sync.Mutex
	corpus    *articleSource
	catalog   catalogUseCase
	searchSvc searchUseCase
	askSvc    admissionUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New fits an index over the configured articles and returns a ready Client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if len(cfg.articles) == 0 {
		return nil, fmt.Errorf("lexdex: articles required (use WithArticles): %w", ErrConfiguration)
	}

	v := vendor.Default
	if cfg.vendor != "" {
		var err error
		if v, err = vendor.Parse(cfg.vendor); err != nil {
			return nil, fmt.Errorf("lexdex: %w", err)
		}
	}
	sel := domrank.Position
	if cfg.selection != "" {
		var err error
		if sel, err = domrank.ParseSelection(string(cfg.selection)); err != nil {
			return nil, fmt.Errorf("lexdex: %w", err)
		}
	}

	var policy domain.PolicyChannel
	switch {
	case cfg.policy != nil:
		policy = cfg.policy
	case cfg.policyTable != nil:
		policy = table.New(cfg.policyTable, v)
	default:
		return nil, fmt.Errorf("lexdex: policy channel required (use WithPolicyChannel or WithPolicyTable): %w",
			ErrConfiguration)
	}

	vectorizer, err := lexical.NewVectorizer(indexOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("lexdex: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	src := &articleSource{articles: toDomain(cfg.articles)}
	cat := catalog.New(src, vectorizer, nil, zap.NewNop())
	if _, err := cat.Build(ctx); err != nil {
		return nil, fmt.Errorf("lexdex: build index: %w", err)
	}
	rank := rankinguc.New(cat, sel)

	// Pass nil interface (not a typed nil) when the channel has no health check.
	var checker healthuc.PolicyChecker
	if hc, ok := policy.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		corpus:    src,
		catalog:   cat,
		searchSvc: rank,
		askSvc:    admission.New(rank, policy, v, zap.NewNop()),
		healthSvc: healthuc.New(cat, nil, checker),
		obs:       obs,
	}, nil
}

func indexOptions(cfg *clientConfig) lexical.Options {
	opts := lexical.DefaultOptions()
	if cfg.titleWeight != nil {
		opts.TitleWeight = *cfg.titleWeight
	}
	if cfg.ngramMax > 0 {
		opts.NGramMax = cfg.ngramMax
	}
	if cfg.maxDF > 0 {
		opts.MaxDF = cfg.maxDF
	}
	return opts
}

// Ask ranks question (plus background["slate"]) against the corpus and
// releases the selected title only if the policy check passes.
func (c *Client) Ask(ctx context.Context, question string, background map[string]string) (a Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opAsk, start, err) }()

	d, err := c.askSvc.Evaluate(ctx, question, background)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	a = Answer{
		Text:     d.Answer,
		Released: d.Released,
		Selected: toMatch(d.Selected),
		Criteria: d.Outcomes.Strings(),
	}
	c.obs.answered(a)
	return a, nil
}

// Search returns up to limit articles, best match first. limit <= 0 returns all.
func (c *Client) Search(ctx context.Context, query string, limit int) (matches []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSearch, start, err) }()

	rows, err := c.searchSvc.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	rows = rankinguc.Sort(rows, domrank.Similarity)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	matches = make([]Match, len(rows))
	for i, r := range rows {
		matches[i] = toMatch(r)
	}
	return matches, nil
}

// Rebuild refits the index over a new corpus. On failure the previous
// corpus and index stay in place.
func (c *Client) Rebuild(ctx context.Context, articles []Article) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opRebuild, start, err) }()

	if len(articles) == 0 {
		return fmt.Errorf("rebuild: %w", ErrConfiguration)
	}
	c.rebuildMu.Lock()
	defer c.rebuildMu.Unlock()

	prev := c.corpus.swap(toDomain(articles))
	if _, err = c.catalog.Build(ctx); err != nil {
		c.corpus.swap(prev)
		return fmt.Errorf("rebuild: %w", err)
	}
	return nil
}

// articleSource is a replaceable in-memory corpus.
type articleSource struct {
	mu       sync.Mutex
	articles corpus.Static
}

func (s *articleSource) Articles(ctx context.Context) ([]article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.articles == nil {
		return nil, errors.New("lexdex: corpus not set")
	}
	return s.articles.Articles(ctx)
}

func (s *articleSource) swap(articles corpus.Static) corpus.Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.articles
	s.articles = articles
	return prev
}

func toDomain(articles []Article) corpus.Static {
	out := make(corpus.Static, len(articles))
	for i, a := range articles {
		out[i] = article.Article{Title: a.Title, Content: a.Content}
	}
	return out
}

func toMatch(r domrank.Row) Match {
	return Match{DocIndex: r.DocIndex, Title: r.ArticleTitle, Similarity: r.Similarity}
}
