package corpus

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/lexdex/internal/domain/article"
)

// SQLiteStore keeps the corpus in a SQLite table. Row order is doc_index.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := NewSQLiteStore(db)
	if err := s.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the articles table if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			doc_index INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Articles returns every article ordered by doc_index.
func (s *SQLiteStore) Articles(ctx context.Context) ([]article.Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, content FROM articles ORDER BY doc_index`)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []article.Article
	for rows.Next() {
		var a article.Article
		if err := rows.Scan(&a.Title, &a.Content); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// Replace swaps the whole corpus in one transaction. Doc indexes are
// reassigned from 0 in slice order.
func (s *SQLiteStore) Replace(ctx context.Context, articles []article.Article) error {
	if err := validate(articles); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles`); err != nil {
		return fmt.Errorf("clear articles: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO articles (doc_index, title, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, a := range articles {
		if _, err := stmt.ExecContext(ctx, i, a.Title, a.Content); err != nil {
			return fmt.Errorf("insert article %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit articles: %w", err)
	}
	return nil
}
