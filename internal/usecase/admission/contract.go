package admission

import (
	"context"

	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
)

// Ranker ranks the corpus and applies the selection rule.
type Ranker interface {
	Top(ctx context.Context, query string) (domrank.Row, []domrank.Row, error)
}
