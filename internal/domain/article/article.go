package article

import "fmt"

// Article is a single legislative article in the corpus.
// Its identity is its position in the corpus (doc index).
type Article struct {
	Title   string `yaml:"article_title" json:"article_title" cbor:"title"`
	Content string `yaml:"article_content" json:"article_content" cbor:"content"`
}

// Validate checks that the article can be indexed.
func (a Article) Validate() error {
	if a.Title == "" {
		return fmt.Errorf("article title is required")
	}
	return nil
}
