package lexical

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/kailas-cloud/lexdex/internal/domain"
)

// Index is a fitted vector space: vocabulary, idf weights and one
// L2-normalised row per article, aligned by doc index. The zero value is an
// unfitted index.
type Index struct {
	options     Options
	stop        map[string]struct{}
	vocabulary  map[string]int
	terms       []string
	idf         []float64
	titles      []string
	rows        []Vector
	fingerprint Fingerprint
}

// Fitted reports whether ix holds a fitted vector space.
func (ix *Index) Fitted() bool {
	return ix != nil && len(ix.terms) > 0 && ix.vocabulary != nil
}

// Transform projects a query into the fitted space. The query is normalised
// but never title-weighted; unknown terms are dropped.
func (ix *Index) Transform(query string) (Vector, error) {
	if !ix.Fitted() {
		return Vector{}, domain.ErrNotFitted
	}
	tf := make(map[string]int)
	for _, term := range analyze(Normalize(query), ix.stop, ix.options.NGramMin, ix.options.NGramMax) {
		tf[term]++
	}
	return ix.weigh(tf), nil
}

// weigh turns raw term counts into a normalised tf-idf vector in ix's space.
func (ix *Index) weigh(tf map[string]int) Vector {
	columns := make([]int, 0, len(tf))
	for term := range tf {
		if col, ok := ix.vocabulary[term]; ok {
			columns = append(columns, col)
		}
	}
	sort.Ints(columns)
	weights := make([]float64, len(columns))
	for i, col := range columns {
		weights[i] = float64(tf[ix.terms[col]]) * ix.idf[col]
	}
	l2normalize(weights)
	return Vector{space: ix.fingerprint, columns: columns, weights: weights}
}

// Len returns the number of indexed articles.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.rows)
}

// Row returns the document vector of the article at docIndex.
func (ix *Index) Row(docIndex int) Vector { return ix.rows[docIndex] }

// Title returns the title of the article at docIndex.
func (ix *Index) Title(docIndex int) string { return ix.titles[docIndex] }

// VocabularySize returns the number of indexed terms.
func (ix *Index) VocabularySize() int { return len(ix.terms) }

// Column returns the column assigned to term.
func (ix *Index) Column(term string) (int, bool) {
	col, ok := ix.vocabulary[term]
	return col, ok
}

// IDF returns the inverse-document-frequency weight of a column.
func (ix *Index) IDF(column int) float64 { return ix.idf[column] }

// Options returns the hyperparameters the index was fitted with.
func (ix *Index) Options() Options { return ix.options }

// Fingerprint identifies this index's vector space.
func (ix *Index) Fingerprint() Fingerprint { return ix.fingerprint }

func computeFingerprint(opts Options, terms []string, idf []float64) Fingerprint {
	h := blake3.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = h.Write(buf[:])
	}
	writeInt(opts.NGramMin)
	writeInt(opts.NGramMax)
	writeInt(opts.TitleWeight)
	_, _ = h.Write([]byte(opts.StopWords))
	for _, w := range opts.StopWordList {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(w))
	}
	for i, term := range terms {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(term))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(idf[i]))
		_, _ = h.Write(buf[:])
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// Snapshot is the plain-data form of a fitted index used for persistence.
type Snapshot struct {
	Options Options       `cbor:"options"`
	Terms   []string      `cbor:"terms"`
	IDF     []float64     `cbor:"idf"`
	Titles  []string      `cbor:"titles"`
	Rows    []SnapshotRow `cbor:"rows"`
}

// SnapshotRow is one sparse document vector.
type SnapshotRow struct {
	Columns []int     `cbor:"c"`
	Weights []float64 `cbor:"w"`
}

// Snapshot exports the index. The result shares no memory with ix.
func (ix *Index) Snapshot() (Snapshot, error) {
	if !ix.Fitted() {
		return Snapshot{}, domain.ErrNotFitted
	}
	s := Snapshot{
		Options: ix.options,
		Terms:   append([]string(nil), ix.terms...),
		IDF:     append([]float64(nil), ix.idf...),
		Titles:  append([]string(nil), ix.titles...),
		Rows:    make([]SnapshotRow, len(ix.rows)),
	}
	s.Options.StopWordList = append([]string(nil), ix.options.StopWordList...)
	for i, r := range ix.rows {
		s.Rows[i] = SnapshotRow{
			Columns: append([]int(nil), r.columns...),
			Weights: append([]float64(nil), r.weights...),
		}
	}
	return s, nil
}

// Restore rebuilds an index from a snapshot, rejecting inconsistent data.
func Restore(s Snapshot) (*Index, error) {
	if err := s.Options.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot options: %w", err)
	}
	if len(s.Terms) == 0 {
		return nil, fmt.Errorf("snapshot has an empty vocabulary")
	}
	if len(s.IDF) != len(s.Terms) {
		return nil, fmt.Errorf("snapshot has %d idf weights for %d terms", len(s.IDF), len(s.Terms))
	}
	if len(s.Titles) != len(s.Rows) || len(s.Rows) == 0 {
		return nil, fmt.Errorf("snapshot has %d titles for %d rows", len(s.Titles), len(s.Rows))
	}

	vocabulary := make(map[string]int, len(s.Terms))
	for col, term := range s.Terms {
		if col > 0 && s.Terms[col-1] >= term {
			return nil, fmt.Errorf("snapshot vocabulary not strictly sorted at column %d", col)
		}
		vocabulary[term] = col
	}

	ix := &Index{
		options:    s.Options,
		stop:       stopSet(s.Options.StopWords, s.Options.StopWordList),
		vocabulary: vocabulary,
		terms:      s.Terms,
		idf:        s.IDF,
		titles:     s.Titles,
		rows:       make([]Vector, len(s.Rows)),
	}
	ix.fingerprint = computeFingerprint(s.Options, s.Terms, s.IDF)

	for i, r := range s.Rows {
		if len(r.Columns) != len(r.Weights) {
			return nil, fmt.Errorf("snapshot row %d: %d columns for %d weights", i, len(r.Columns), len(r.Weights))
		}
		for j, col := range r.Columns {
			if col < 0 || col >= len(s.Terms) || (j > 0 && r.Columns[j-1] >= col) {
				return nil, fmt.Errorf("snapshot row %d: bad column %d", i, col)
			}
		}
		ix.rows[i] = Vector{space: ix.fingerprint, columns: r.Columns, weights: r.Weights}
	}
	return ix, nil
}
