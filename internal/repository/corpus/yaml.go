package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/domain/article"
)

// YAMLFile reads a sequence of {article_title, article_content} records.
// JSON arrays parse too.
type YAMLFile struct {
	path string
}

// NewYAMLFile creates a loader for path.
func NewYAMLFile(path string) *YAMLFile {
	return &YAMLFile{path: filepath.Clean(path)}
}

// Articles reads and validates the file on every call.
func (f *YAMLFile) Articles(_ context.Context) ([]article.Article, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", f.path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes corpus records.
func ParseYAML(data []byte) ([]article.Article, error) {
	var articles []article.Article
	if err := yaml.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if err := validate(articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func indexedError(i int, err error) error {
	return fmt.Errorf("article %d: %w", i, err)
}
