// Package catalog owns the published index. A new index is always built or
// loaded completely before it is published; readers see either the old or
// the new one.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/metrics"
	"github.com/kailas-cloud/lexdex/internal/repository/artifact"
)

// Info describes the published index.
type Info struct {
	Source      string
	PublishedAt time.Time
	Documents   int
	Vocabulary  int
	Fingerprint string
}

type published struct {
	index *lexical.Index
	info  Info
}

// Catalog builds, loads and publishes indexes.
type Catalog struct {
	current    atomic.Pointer[published]
	mu         sync.Mutex // serialises Build/Reload
	corpus     CorpusSource
	vectorizer *lexical.Vectorizer
	artifacts  ArtifactStore
	now        func() time.Time
	logger     *zap.Logger
}

// New creates an empty catalog. corpus and artifacts may each be nil, but
// not both.
func New(corpus CorpusSource, vectorizer *lexical.Vectorizer, artifacts ArtifactStore, logger *zap.Logger) *Catalog {
	return &Catalog{
		corpus:     corpus,
		vectorizer: vectorizer,
		artifacts:  artifacts,
		now:        time.Now,
		logger:     logger,
	}
}

// Current returns the published index, or ErrNotIndexed before the first publish.
func (c *Catalog) Current() (*lexical.Index, error) {
	p := c.current.Load()
	if p == nil {
		return nil, domain.ErrNotIndexed
	}
	return p.index, nil
}

// Info returns metadata about the published index.
func (c *Catalog) Info() (Info, bool) {
	p := c.current.Load()
	if p == nil {
		return Info{}, false
	}
	return p.info, true
}

// Publish atomically replaces the published index.
func (c *Catalog) Publish(ix *lexical.Index, source string) error {
	if !ix.Fitted() {
		return fmt.Errorf("publish: %w", domain.ErrNotFitted)
	}
	info := Info{
		Source:      source,
		PublishedAt: c.now(),
		Documents:   ix.Len(),
		Vocabulary:  ix.VocabularySize(),
		Fingerprint: ix.Fingerprint().String(),
	}
	c.current.Store(&published{index: ix, info: info})

	metrics.IndexDocuments.Set(float64(info.Documents))
	metrics.IndexVocabulary.Set(float64(info.Vocabulary))
	c.logger.Info("Index published",
		zap.String("source", source),
		zap.Int("documents", info.Documents),
		zap.Int("vocabulary", info.Vocabulary),
		zap.String("fingerprint", info.Fingerprint),
	)
	return nil
}

// Build fits a fresh index on the corpus and publishes it. On failure the
// previously published index stays in place.
func (c *Catalog) Build(ctx context.Context) (*lexical.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.build(ctx)
	if err != nil {
		metrics.IndexReloadsTotal.WithLabelValues("build", "error").Inc()
		return nil, err
	}
	metrics.IndexReloadsTotal.WithLabelValues("build", "success").Inc()
	return ix, c.Publish(ix, "build")
}

func (c *Catalog) build(ctx context.Context) (*lexical.Index, error) {
	if c.corpus == nil {
		return nil, domain.Configurationf("no corpus configured")
	}
	articles, err := c.corpus.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	start := time.Now()
	ix, err := c.vectorizer.Fit(articles)
	if err != nil {
		return nil, fmt.Errorf("fit index: %w", err)
	}
	c.logger.Debug("Index fitted",
		zap.Int("documents", ix.Len()),
		zap.Int("vocabulary", ix.VocabularySize()),
		zap.Duration("duration", time.Since(start)),
	)
	return ix, nil
}

// Reload loads the persisted artifact and publishes it. On failure the
// previously published index stays in place.
func (c *Catalog) Reload(ctx context.Context) (artifact.Manifest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.artifacts == nil {
		return artifact.Manifest{}, domain.Configurationf("no artifact store configured")
	}
	ix, m, err := c.artifacts.Load(ctx)
	if err != nil {
		metrics.IndexReloadsTotal.WithLabelValues("artifact", "error").Inc()
		return artifact.Manifest{}, fmt.Errorf("reload index: %w", err)
	}
	metrics.IndexReloadsTotal.WithLabelValues("artifact", "success").Inc()
	return m, c.Publish(ix, "artifact")
}

// Save persists the published index.
func (c *Catalog) Save(ctx context.Context) (artifact.Manifest, error) {
	if c.artifacts == nil {
		return artifact.Manifest{}, domain.Configurationf("no artifact store configured")
	}
	ix, err := c.Current()
	if err != nil {
		return artifact.Manifest{}, err
	}
	m, err := c.artifacts.Save(ctx, ix)
	if err != nil {
		return artifact.Manifest{}, fmt.Errorf("save index: %w", err)
	}
	return m, nil
}

// Start publishes the first index: the artifact when one is configured,
// falling back to a corpus build when the artifact does not exist yet.
func (c *Catalog) Start(ctx context.Context) error {
	if c.artifacts != nil {
		_, err := c.Reload(ctx)
		if err == nil {
			return nil
		}
		if c.corpus == nil || !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c.logger.Warn("No index artifact yet, building from corpus", zap.Error(err))
	}
	if _, err := c.Build(ctx); err != nil {
		return err
	}
	if c.artifacts != nil {
		if _, err := c.Save(ctx); err != nil {
			c.logger.Warn("Failed to persist freshly built index", zap.Error(err))
		}
	}
	return nil
}
