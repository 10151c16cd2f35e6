package ranking

// Row is one scored article in a ranking table.
type Row struct {
	DocIndex     int
	ArticleTitle string
	Similarity   float64
}

// TruncatedSimilarity returns the similarity truncated toward zero.
// Lossy: use it for display and logs, never for comparisons.
func (r Row) TruncatedSimilarity() int {
	return int(r.Similarity)
}
