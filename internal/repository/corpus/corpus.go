// Package corpus loads the legislative articles an index is fitted on.
package corpus

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/domain/article"
)

// Source yields the articles in doc-index order.
type Source interface {
	Articles(ctx context.Context) ([]article.Article, error)
}

func validate(articles []article.Article) error {
	for i := range articles {
		if err := articles[i].Validate(); err != nil {
			return indexedError(i, err)
		}
	}
	return nil
}

// Static is an in-memory corpus.
type Static []article.Article

// Articles validates and returns a copy of the corpus.
func (s Static) Articles(_ context.Context) ([]article.Article, error) {
	if err := validate(s); err != nil {
		return nil, err
	}
	return append([]article.Article(nil), s...), nil
}
