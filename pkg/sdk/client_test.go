package lexdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
)

func testArticles() []Article {
	return []Article{
		{Title: "Minimum Wage Law", Content: "Employers must pay at least the state minimum hourly wage."},
		{Title: "Overtime Rules", Content: "Hours above forty per week are paid overtime at time and a half."},
		{Title: "Paid Sick Leave", Content: "Employees accrue one hour of sick leave per thirty hours worked."},
	}
}

func testTable() map[string]string {
	return map[string]string{
		"What is the minimum wage?":  "LAWFULNESS- PASS. SCOPE- PASS.",
		"How do I dodge overtime?":   "LAWFULNESS- FAIL. SCOPE- FAIL.",
		"What is the best pizza?":    "LAWFULNESS- PASS. SCOPE- FAIL.",
		"Is it ethical to overwork?": "ETHICAL- FAIL. SCOPE- TRUE.",
	}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithArticles(testArticles()), WithPolicyTable(testTable())}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		opts []Option
	}{
		{"no articles", []Option{WithPolicyTable(testTable())}},
		{"no policy", []Option{WithArticles(testArticles())}},
		{"unknown vendor", []Option{WithArticles(testArticles()), WithPolicyTable(testTable()), WithVendor("ACME")}},
		{"unknown selection", []Option{WithArticles(testArticles()), WithPolicyTable(testTable()), WithSelection("random")}},
		{"single article", []Option{WithArticles(testArticles()[:1]), WithPolicyTable(testTable())}},
		{"untitled article", []Option{WithArticles([]Article{{Content: "x"}, {Title: "y"}}), WithPolicyTable(testTable())}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(ctx, tc.opts...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_MissingInputsAreConfigurationErrors(t *testing.T) {
	_, err := New(context.Background(), WithPolicyTable(testTable()))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestClient_Ask_PositionRule(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	// position selection always picks doc index 0
	a, err := c.Ask(ctx, "How do I dodge overtime?", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if a.Released || a.Text != admission.FallbackResponse {
		t.Errorf("rejected question released: %+v", a)
	}
	if a.Selected.DocIndex != 0 {
		t.Errorf("selected doc %d, want 0", a.Selected.DocIndex)
	}

	a, err = c.Ask(ctx, "What is the minimum wage?", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !a.Released || a.Text != "Minimum Wage Law" {
		t.Errorf("answer = %+v", a)
	}
	if a.Criteria["LAWFULNESS"] != "PASS" || a.Criteria["SCOPE"] != "PASS" {
		t.Errorf("criteria = %v", a.Criteria)
	}

	// OR gate: one passing criterion is enough
	a, _ = c.Ask(ctx, "What is the best pizza?", nil)
	if !a.Released {
		t.Error("expected release when LAWFULNESS passes")
	}
}

func TestClient_Ask_SimilaritySelection(t *testing.T) {
	c := newTestClient(t, WithSelection(SelectionSimilarity))
	a, err := c.Ask(context.Background(), "How do I dodge overtime?", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if a.Selected.Title != "Overtime Rules" || a.Selected.DocIndex != 1 {
		t.Errorf("selected = %+v", a.Selected)
	}
	if a.Released || a.Text != admission.FallbackResponse {
		t.Errorf("answer = %+v", a)
	}
}

func TestClient_Ask_VendorGate(t *testing.T) {
	c := newTestClient(t, WithVendor("PCTY2"))
	a, err := c.Ask(context.Background(), "Is it ethical to overwork?", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !a.Released {
		t.Errorf("SCOPE-TRUE should release for PCTY2: %+v", a)
	}
}

func TestClient_Ask_ChannelError(t *testing.T) {
	c := newTestClient(t, WithPolicyChannel(&mockPolicy{
		fn: func(context.Context, string, string) (string, error) {
			return "", errors.New("timeout")
		},
	}))
	if _, err := c.Ask(context.Background(), "q", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	matches, err := c.Search(ctx, "sick leave hours", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d", len(matches))
	}
	if matches[0].Title != "Paid Sick Leave" {
		t.Errorf("best match = %+v", matches[0])
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Error("matches not sorted best first")
	}

	all, _ := c.Search(ctx, "sick leave hours", 0)
	if len(all) != 3 {
		t.Errorf("limit 0 returned %d matches", len(all))
	}
}

func TestClient_Rebuild(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	err := c.Rebuild(ctx, []Article{
		{Title: "Pension Plans", Content: "Employer pension contributions."},
		{Title: "Holiday Pay", Content: "Paid public holidays."},
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	matches, _ := c.Search(ctx, "pension", 1)
	if matches[0].Title != "Pension Plans" {
		t.Errorf("after rebuild best match = %+v", matches[0])
	}

	// a failed rebuild keeps the previous corpus
	if err := c.Rebuild(ctx, []Article{{Title: "Only"}}); err == nil {
		t.Fatal("expected error for single-article corpus")
	}
	matches, _ = c.Search(ctx, "pension", 1)
	if matches[0].Title != "Pension Plans" {
		t.Errorf("failed rebuild replaced the index: %+v", matches[0])
	}
	if err := c.Rebuild(ctx, nil); !errors.Is(err, ErrConfiguration) {
		t.Errorf("empty rebuild: %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, WithPolicyChannel(&mockPolicy{
		fn:      func(context.Context, string, string) (string, error) { return "", nil },
		healthy: errors.New("down"),
	}))
	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["index"] != "ok" || h.Checks["policy"] != "error" {
		t.Errorf("health = %+v", h)
	}
	if !h.Ready() || h.Articles != len(testArticles()) || h.Fingerprint == "" {
		t.Errorf("index details = %+v", h)
	}
}

func TestClient_MockedUseCases(t *testing.T) {
	c := &Client{
		corpus: &articleSource{},
		catalog: &mockCatalogUC{buildFn: func(context.Context) (*lexical.Index, error) {
			return nil, errors.New("fit failed")
		}},
		searchSvc: &mockSearchUC{searchFn: func(context.Context, string) ([]domrank.Row, error) {
			return nil, ErrNotIndexed
		}},
		askSvc: &mockAdmissionUC{evaluateFn: func(context.Context, string, map[string]string) (admission.Decision, error) {
			return admission.Decision{}, ErrPolicyChannel
		}},
		healthSvc: &mockHealthUC{report: healthuc.Report{Status: healthuc.Unhealthy}},
	}
	ctx := context.Background()

	if _, err := c.Search(ctx, "x", 1); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("Search err = %v", err)
	}
	if _, err := c.Ask(ctx, "x", nil); !errors.Is(err, ErrPolicyChannel) {
		t.Errorf("Ask err = %v", err)
	}
	if err := c.Rebuild(ctx, testArticles()); err == nil || !strings.Contains(err.Error(), "fit failed") {
		t.Errorf("Rebuild err = %v", err)
	}
	if c.corpus.articles != nil {
		t.Error("failed rebuild must restore the previous corpus")
	}
	if h := c.Health(ctx); h.Status != "error" || h.Ready() || h.Articles != 0 {
		t.Errorf("health = %+v", h)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithVendor("PCTY2").apply(cfg)
	WithSelection(SelectionSimilarity).apply(cfg)
	WithTitleWeight(0).apply(cfg)
	WithNGramMax(3).apply(cfg)
	WithMaxDF(0.8).apply(cfg)

	opts := indexOptions(cfg)
	if opts.TitleWeight != 0 || opts.NGramMax != 3 || opts.MaxDF != 0.8 {
		t.Errorf("index options = %+v", opts)
	}
	if cfg.vendor != "PCTY2" || cfg.selection != SelectionSimilarity {
		t.Errorf("cfg = %+v", cfg)
	}
	if def := indexOptions(&clientConfig{}); def.TitleWeight != lexical.DefaultOptions().TitleWeight {
		t.Errorf("default title weight = %d", def.TitleWeight)
	}

	cfg2 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg2)
	if cfg2.logger != logger {
		t.Error("expected logger to be set")
	}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg2)
	if cfg2.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))
	_, _ = c.Search(context.Background(), "wage", 1)

	if n := testutil.CollectAndCount(c.obs.metrics.operations, "lexdex_sdk_operations_total"); n != 1 {
		t.Errorf("operations series = %d, want 1", n)
	}
}

func TestClient_PrometheusAnswers(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithPrometheus(reg))
	if _, err := c.Ask(context.Background(), "What is the minimum wage?", nil); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if got := testutil.ToFloat64(c.obs.metrics.answers.WithLabelValues("true")); got != 1 {
		t.Errorf("released answers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues(opAsk, "ok")); got != 1 {
		t.Errorf("ask ok = %v, want 1", got)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("search: %w", ErrNotIndexed), "not_indexed"},
		{fmt.Errorf("ask: %w", ErrPolicyChannel), "policy_channel"},
		{ErrConfiguration, "configuration"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe(opSearch, time.Now(), nil)
	obs.observe(opSearch, time.Now(), errors.New("err"))
	obs.answered(Answer{Released: true})
}

func TestObserver_LabelsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe(opSearch, time.Now().Add(-10*time.Millisecond), nil)
	obs.observe(opSearch, time.Now(), ErrNotIndexed)
	obs.observe(opSearch, time.Now(), ErrNotIndexed)

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues(opSearch, "not_indexed")); got != 2 {
		t.Errorf("not_indexed = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(obs.metrics.operations, "lexdex_sdk_operations_total"); n != 2 {
		t.Errorf("operation series = %d, want 2", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("second observer must reuse the registered counter")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.New(slog.DiscardHandler), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe(opRebuild, time.Now(), nil)
	obs.observe(opRebuild, time.Now(), errors.New("test error"))
	obs.answered(Answer{})
}

func TestClient_ConcurrentRebuildKeepsCorpusInStep(t *testing.T) {
	ctx := context.Background()
	good := []Article{{Title: "Good", Content: "kept"}}
	bad := []Article{{Title: "Bad", Content: "rejected"}}

	for range 50 {
		src := &articleSource{articles: toDomain(testArticles())}
		var built string // title of the corpus behind the published index
		var mu sync.Mutex
		c := &Client{
			corpus: src,
			catalog: &mockCatalogUC{buildFn: func(ctx context.Context) (*lexical.Index, error) {
				arts, err := src.Articles(ctx)
				if err != nil {
					return nil, err
				}
				time.Sleep(time.Millisecond)
				if arts[0].Title == "Bad" {
					return nil, errors.New("fit failed")
				}
				mu.Lock()
				built = arts[0].Title
				mu.Unlock()
				return nil, nil
			}},
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _ = c.Rebuild(ctx, bad) }()
		go func() { defer wg.Done(); _ = c.Rebuild(ctx, good) }()
		wg.Wait()

		if got := src.articles[0].Title; got != "Good" || built != "Good" {
			t.Fatalf("corpus %q, published index built from %q", got, built)
		}
	}
}
