package lexical

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/article"
)

func testCorpus() []article.Article {
	return []article.Article{
		{Title: "Minimum Wage Law", Content: "Employers must pay at least the state minimum hourly rate."},
		{Title: "Overtime Rules", Content: "Hours above forty per week are paid at time and a half."},
		{Title: "Paid Sick Leave", Content: "Employees accrue one hour of sick leave per thirty hours worked."},
	}
}

func mustFit(t *testing.T, articles []article.Article, opts Options) *Index {
	t.Helper()
	ix, err := Fit(articles, opts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return ix
}

func TestFit_EmptyCorpus(t *testing.T) {
	_, err := Fit(nil, DefaultOptions())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFit_MinDFAboveMaxDF(t *testing.T) {
	opts := DefaultOptions()
	opts.MinDF = 3
	opts.MaxDF = 0.5
	_, err := Fit(testCorpus(), opts)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFit_SingleDocumentDefaultMaxDF(t *testing.T) {
	// 0.95 * 1 document < min_df 1
	_, err := Fit(testCorpus()[:1], DefaultOptions())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFit_OnlyStopWords(t *testing.T) {
	articles := []article.Article{{Title: "The", Content: "and or"}, {Title: "Of", Content: "it is"}}
	_, err := Fit(articles, DefaultOptions())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFit_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"ngram min zero", func(o *Options) { o.NGramMin = 0 }},
		{"ngram max below min", func(o *Options) { o.NGramMin, o.NGramMax = 2, 1 }},
		{"max_df zero", func(o *Options) { o.MaxDF = 0 }},
		{"max_df above one", func(o *Options) { o.MaxDF = 1.5 }},
		{"min_df zero", func(o *Options) { o.MinDF = 0 }},
		{"negative max_features", func(o *Options) { o.MaxFeatures = -1 }},
		{"negative title weight", func(o *Options) { o.TitleWeight = -2 }},
		{"unknown stop words", func(o *Options) { o.StopWords = "klingon" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			if _, err := Fit(testCorpus(), opts); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestFit_VocabularyPruning(t *testing.T) {
	articles := []article.Article{
		{Title: "wage", Content: "common"},
		{Title: "leave", Content: "common"},
		{Title: "overtime", Content: "common"},
	}
	opts := DefaultOptions()
	opts.NGramMax = 1
	ix := mustFit(t, articles, opts)

	// "common" is in 3/3 documents > 0.95
	if _, ok := ix.Column("common"); ok {
		t.Error("term above max_df must be pruned")
	}
	for _, term := range []string{"wage", "leave", "overtime"} {
		if _, ok := ix.Column(term); !ok {
			t.Errorf("term %q missing from vocabulary", term)
		}
	}

	opts.MaxDF = 1
	opts.MinDF = 2
	ix = mustFit(t, articles, opts)
	if ix.VocabularySize() != 1 {
		t.Errorf("min_df=2 vocabulary size = %d, want 1", ix.VocabularySize())
	}
}

func TestFit_MaxFeatures(t *testing.T) {
	articles := []article.Article{
		{Title: "alpha alpha alpha beta", Content: "gamma"},
		{Title: "delta", Content: "beta"},
	}
	opts := DefaultOptions()
	opts.NGramMax = 1
	opts.MaxDF = 1
	opts.TitleWeight = 0
	opts.MaxFeatures = 2
	ix := mustFit(t, articles, opts)

	if ix.VocabularySize() != 2 {
		t.Fatalf("vocabulary size = %d, want 2", ix.VocabularySize())
	}
	// alpha (3) and beta (2) are the most frequent terms
	for _, term := range []string{"alpha", "beta"} {
		if _, ok := ix.Column(term); !ok {
			t.Errorf("expected %q to survive max_features", term)
		}
	}
}

func TestFit_ColumnsSortedAndIDF(t *testing.T) {
	articles := []article.Article{
		{Title: "zeta", Content: "shared"},
		{Title: "alpha", Content: "shared"},
	}
	opts := DefaultOptions()
	opts.NGramMax = 1
	opts.MaxDF = 1
	ix := mustFit(t, articles, opts)

	alpha, _ := ix.Column("alpha")
	shared, _ := ix.Column("shared")
	zeta, _ := ix.Column("zeta")
	if !(alpha < shared && shared < zeta) {
		t.Errorf("columns not in term order: alpha=%d shared=%d zeta=%d", alpha, shared, zeta)
	}

	// idf = ln((1+n)/(1+df)) + 1
	if got, want := ix.IDF(shared), 1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(shared) = %v, want %v", got, want)
	}
	if got, want := ix.IDF(alpha), math.Log(3.0/2.0)+1; math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(alpha) = %v, want %v", got, want)
	}
}

func TestFit_RowsAreUnitLength(t *testing.T) {
	ix := mustFit(t, testCorpus(), DefaultOptions())
	if ix.Len() != 3 {
		t.Fatalf("Len = %d", ix.Len())
	}
	for i := 0; i < ix.Len(); i++ {
		if n := ix.Row(i).Norm(); math.Abs(n-1) > 1e-9 {
			t.Errorf("row %d norm = %v", i, n)
		}
		if ix.Title(i) != testCorpus()[i].Title {
			t.Errorf("title %d = %q", i, ix.Title(i))
		}
	}
}

func TestFit_Deterministic(t *testing.T) {
	a := mustFit(t, testCorpus(), DefaultOptions())
	b := mustFit(t, testCorpus(), DefaultOptions())

	sa, _ := a.Snapshot()
	sb, _ := b.Snapshot()
	if !reflect.DeepEqual(sa, sb) {
		t.Error("two fits on the same corpus differ")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprints differ for identical fits")
	}
	if a == b {
		t.Error("each Fit must return a fresh index")
	}
}

func TestTransform_NotFitted(t *testing.T) {
	var nilIndex *Index
	if _, err := nilIndex.Transform("wage"); !errors.Is(err, domain.ErrNotFitted) {
		t.Errorf("nil index: expected ErrNotFitted, got %v", err)
	}
	if _, err := (&Index{}).Transform("wage"); !errors.Is(err, domain.ErrNotFitted) {
		t.Errorf("zero index: expected ErrNotFitted, got %v", err)
	}
}

func TestTransform_DropsUnknownTermsAndNormalizes(t *testing.T) {
	ix := mustFit(t, testCorpus(), DefaultOptions())

	v, err := ix.Transform("  What is the MINIMUM   wage?  zebra ")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, term := range []string{"minimum", "wage", "minimum wage"} {
		col, ok := ix.Column(term)
		if !ok {
			t.Fatalf("term %q not in vocabulary", term)
		}
		if v.Weight(col) == 0 {
			t.Errorf("expected weight for %q", term)
		}
	}
	if v.Len() != 3 {
		t.Errorf("vector has %d entries, want 3", v.Len())
	}
	if math.Abs(v.Norm()-1) > 1e-9 {
		t.Errorf("query vector norm = %v", v.Norm())
	}
	if v.Space() != ix.Fingerprint() {
		t.Error("query vector must carry the index fingerprint")
	}

	empty, err := ix.Transform("")
	if err != nil {
		t.Fatalf("Transform(\"\"): %v", err)
	}
	if empty.Len() != 0 || empty.Norm() != 0 {
		t.Error("empty query must map to the zero vector")
	}
}

func TestTitleWeight_MonotonicSimilarity(t *testing.T) {
	articles := []article.Article{
		{Title: "pension", Content: "employer contribution schedule"},
		{Title: "holiday", Content: "employer contribution schedule"},
	}
	prev := -1.0
	for w := 0; w <= 5; w++ {
		opts := DefaultOptions()
		opts.NGramMax = 1
		opts.MaxDF = 1
		opts.TitleWeight = w
		ix := mustFit(t, articles, opts)
		q, err := ix.Transform("pension")
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		sim := q.Dot(ix.Row(0))
		if sim <= prev {
			t.Errorf("title_weight %d: similarity %v did not increase from %v", w, sim, prev)
		}
		prev = sim
	}
}

func TestSnapshotRestore(t *testing.T) {
	ix := mustFit(t, testCorpus(), DefaultOptions())
	snap, err := ix.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Fingerprint() != ix.Fingerprint() {
		t.Error("restored fingerprint differs")
	}

	q1, _ := ix.Transform("overtime hours")
	q2, _ := restored.Transform("overtime hours")
	for i := 0; i < ix.Len(); i++ {
		if q1.Dot(ix.Row(i)) != q2.Dot(restored.Row(i)) {
			t.Errorf("row %d scores differ after restore", i)
		}
	}
}

func TestSnapshot_NotFitted(t *testing.T) {
	if _, err := (&Index{}).Snapshot(); !errors.Is(err, domain.ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
}

func TestRestore_RejectsCorruptSnapshots(t *testing.T) {
	ix := mustFit(t, testCorpus(), DefaultOptions())
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"empty vocabulary", func(s *Snapshot) { s.Terms = nil; s.IDF = nil }},
		{"idf length", func(s *Snapshot) { s.IDF = s.IDF[:1] }},
		{"titles length", func(s *Snapshot) { s.Titles = s.Titles[:1] }},
		{"unsorted terms", func(s *Snapshot) { s.Terms[0], s.Terms[1] = s.Terms[1], s.Terms[0] }},
		{"column out of range", func(s *Snapshot) { s.Rows[0].Columns[0] = len(s.Terms) }},
		{"row length mismatch", func(s *Snapshot) { s.Rows[0].Weights = s.Rows[0].Weights[:0] }},
		{"invalid options", func(s *Snapshot) { s.Options.MaxDF = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap, _ := ix.Snapshot()
			tc.mutate(&snap)
			if _, err := Restore(snap); err == nil {
				t.Error("expected error")
			}
		})
	}
}
