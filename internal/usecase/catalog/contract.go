package catalog

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/domain/article"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/repository/artifact"
)

// CorpusSource yields the articles to fit on, in doc-index order.
type CorpusSource interface {
	Articles(ctx context.Context) ([]article.Article, error)
}

// ArtifactStore persists fitted indexes.
type ArtifactStore interface {
	Save(ctx context.Context, ix *lexical.Index) (artifact.Manifest, error)
	Load(ctx context.Context) (*lexical.Index, artifact.Manifest, error)
}
