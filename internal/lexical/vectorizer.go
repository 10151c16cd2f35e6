package lexical

import (
	"math"
	"sort"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/article"
)

// Vectorizer fits indexes with a fixed set of validated options.
type Vectorizer struct {
	opts Options
	stop map[string]struct{}
}

// NewVectorizer validates opts and resolves the stop word table once.
func NewVectorizer(opts Options) (*Vectorizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Vectorizer{opts: opts, stop: stopSet(opts.StopWords, opts.StopWordList)}, nil
}

// Options returns the hyperparameters used by Fit.
func (v *Vectorizer) Options() Options { return v.opts }

// Fit builds a fresh index over articles. Fitting the same articles in the
// same order always yields an identical vocabulary and identical vectors.
func (v *Vectorizer) Fit(articles []article.Article) (*Index, error) {
	n := len(articles)
	if n == 0 {
		return nil, domain.Configurationf("cannot fit an index on an empty corpus")
	}
	maxDocCount := v.opts.MaxDF * float64(n)
	if float64(v.opts.MinDF) > maxDocCount {
		return nil, domain.Configurationf(
			"min_df %d exceeds max_df*n_docs %.2f: vocabulary would be empty",
			v.opts.MinDF, maxDocCount)
	}

	counts := make([]map[string]int, n)
	df := make(map[string]int)
	total := make(map[string]int)
	for i, a := range articles {
		doc := MakeDocument(a.Title, a.Content, v.opts.TitleWeight)
		tf := make(map[string]int)
		for _, term := range analyze(doc, v.stop, v.opts.NGramMin, v.opts.NGramMax) {
			tf[term]++
		}
		for term, c := range tf {
			df[term]++
			total[term] += c
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term, d := range df {
		if d < v.opts.MinDF || float64(d) > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}

	if v.opts.MaxFeatures > 0 && len(terms) > v.opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.opts.MaxFeatures]
	}
	if len(terms) == 0 {
		return nil, domain.Configurationf(
			"empty vocabulary after pruning; documents may contain only stop words")
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for col, term := range terms {
		vocabulary[term] = col
		idf[col] = smoothIDF(n, df[term])
	}

	ix := &Index{
		options:    v.opts,
		stop:       v.stop,
		vocabulary: vocabulary,
		terms:      terms,
		idf:        idf,
		titles:     make([]string, n),
		rows:       make([]Vector, n),
	}
	ix.fingerprint = computeFingerprint(v.opts, terms, idf)

	for i, a := range articles {
		ix.titles[i] = a.Title
		ix.rows[i] = ix.weigh(counts[i])
	}
	return ix, nil
}

// Fit is a convenience wrapper around NewVectorizer(opts).Fit(articles).
func Fit(articles []article.Article, opts Options) (*Index, error) {
	v, err := NewVectorizer(opts)
	if err != nil {
		return nil, err
	}
	return v.Fit(articles)
}

// smoothIDF is ln((1+n)/(1+df)) + 1, as if one extra document held every term.
func smoothIDF(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}
