package ranking

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/lexdex/internal/domain"
	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/lexical"
)

// ScoreAll scores every indexed article against vec with a raw dot product.
// Rows come back in doc-index order, one per article, with no cutoff.
func ScoreAll(ix *lexical.Index, vec lexical.Vector) ([]domrank.Row, error) {
	if !ix.Fitted() {
		return nil, domain.ErrNotIndexed
	}
	if vec.Space() != ix.Fingerprint() {
		return nil, domain.ErrVectorMismatch
	}
	rows := make([]domrank.Row, ix.Len())
	for i := range rows {
		rows[i] = domrank.Row{
			DocIndex:     i,
			ArticleTitle: ix.Title(i),
			Similarity:   vec.Dot(ix.Row(i)),
		}
	}
	return rows, nil
}

// Sort returns a stably sorted copy of rows: ascending for Position,
// descending for Similarity. Ties keep doc-index order.
func Sort(rows []domrank.Row, sel domrank.Selection) []domrank.Row {
	sorted := append([]domrank.Row(nil), rows...)
	if sel == domrank.Similarity {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Similarity > sorted[j].Similarity })
	} else {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Similarity < sorted[j].Similarity })
	}
	return sorted
}

// Select picks the "top" row of a ScoreAll table.
//
// Position: sort ascending, then take the row whose pre-sort position was 0.
// The result is always doc index 0, whatever the scores are.
// Similarity: sort descending and take the first row.
func Select(rows []domrank.Row, sel domrank.Selection) (domrank.Row, error) {
	if len(rows) == 0 {
		return domrank.Row{}, domain.ErrNotIndexed
	}
	sorted := Sort(rows, sel)
	switch sel {
	case domrank.Similarity:
		return sorted[0], nil
	case domrank.Position, "":
		first := rows[0].DocIndex
		for _, r := range sorted {
			if r.DocIndex == first {
				return r, nil
			}
		}
		return domrank.Row{}, fmt.Errorf("row at position 0 lost while sorting")
	default:
		return domrank.Row{}, fmt.Errorf("invalid ranking selection: %q", sel)
	}
}
