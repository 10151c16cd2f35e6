package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/article"
	"github.com/kailas-cloud/lexdex/internal/lexical"
)

// --- Mocks ---

type mockIndex struct {
	ix  *lexical.Index
	err error
}

func (m *mockIndex) Current() (*lexical.Index, error) { return m.ix, m.err }

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockPolicyChecker struct {
	err error
}

func (m *mockPolicyChecker) HealthCheck(_ context.Context) error { return m.err }

func published(t *testing.T) *mockIndex {
	t.Helper()
	ix, err := lexical.Fit([]article.Article{
		{Title: "Minimum Wage Law"}, {Title: "Overtime Rules"},
	}, lexical.DefaultOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return &mockIndex{ix: ix}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(published(t), &mockDBPinger{}, &mockPolicyChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"index", "database", "policy"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_NotIndexed(t *testing.T) {
	svc := New(&mockIndex{err: domain.ErrNotIndexed}, &mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(published(t), &mockDBPinger{err: errors.New("conn refused")}, &mockPolicyChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["policy"] != CheckOK {
		t.Errorf("expected policy %q, got %q", CheckOK, r.Checks["policy"])
	}
}

func TestCheck_PolicyError(t *testing.T) {
	svc := New(published(t), nil, &mockPolicyChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent when db is nil")
	}
}

func TestCheck_OnlyIndex(t *testing.T) {
	svc := New(published(t), nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy || len(r.Checks) != 1 {
		t.Errorf("report = %+v", r)
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_ProbeTimeout(t *testing.T) {
	svc := New(published(t), slowPinger{}, &mockPolicyChecker{}).WithTimeout(20 * time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())

	if time.Since(start) > time.Second {
		t.Fatalf("Check took %v", time.Since(start))
	}
	if r.Status != Degraded || r.Checks["database"] != CheckError || r.Checks["policy"] != CheckOK {
		t.Errorf("report = %+v", r)
	}
}

func TestCheck_IndexInfo(t *testing.T) {
	idx := published(t)
	r := New(idx, nil, nil).Check(context.Background())

	if r.Index == nil {
		t.Fatal("expected index info")
	}
	if r.Index.Articles != 2 || r.Index.Vocabulary == 0 {
		t.Errorf("index info = %+v", r.Index)
	}
	if r.Index.Fingerprint != idx.ix.Fingerprint().String() {
		t.Errorf("fingerprint = %s", r.Index.Fingerprint)
	}

	if r := New(&mockIndex{err: domain.ErrNotIndexed}, nil, nil).Check(context.Background()); r.Index != nil {
		t.Errorf("unpublished index must not report info: %+v", r.Index)
	}
}
