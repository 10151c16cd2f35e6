// Package lexical builds a term-frequency / inverse-document-frequency vector
// space over a corpus of articles and projects queries into it.
//
// Documents are title-weighted before indexing: the normalised title is
// repeated TitleWeight extra times ahead of the normalised content, so title
// terms carry TitleWeight+1 times the term frequency of body terms. Queries
// are normalised the same way but never weighted.
//
// An Index is immutable once Fit returns and is safe for concurrent readers.
package lexical
