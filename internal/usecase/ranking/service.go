package ranking

import (
	"context"
	"fmt"

	domrank "github.com/kailas-cloud/lexdex/internal/domain/ranking"
)

// Service ranks the published corpus against free-text queries.
type Service struct {
	source    IndexSource
	selection domrank.Selection
}

// New creates a ranking service using the given selection rule.
func New(source IndexSource, selection domrank.Selection) *Service {
	if selection == "" {
		selection = domrank.Position
	}
	return &Service{source: source, selection: selection}
}

// Selection returns the configured selection rule.
func (s *Service) Selection() domrank.Selection { return s.selection }

// Search scores every article against query. Rows are in doc-index order.
func (s *Service) Search(_ context.Context, query string) ([]domrank.Row, error) {
	ix, err := s.source.Current()
	if err != nil {
		return nil, fmt.Errorf("current index: %w", err)
	}
	vec, err := ix.Transform(query)
	if err != nil {
		return nil, fmt.Errorf("transform query: %w", err)
	}
	rows, err := ScoreAll(ix, vec)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	return rows, nil
}

// Top ranks the corpus and applies the selection rule.
func (s *Service) Top(ctx context.Context, query string) (domrank.Row, []domrank.Row, error) {
	rows, err := s.Search(ctx, query)
	if err != nil {
		return domrank.Row{}, nil, err
	}
	top, err := Select(rows, s.selection)
	if err != nil {
		return domrank.Row{}, nil, fmt.Errorf("select: %w", err)
	}
	return top, rows, nil
}
