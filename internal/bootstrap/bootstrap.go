// Package bootstrap builds the stores, channels and services shared by the
// lexdex commands from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/config"
	"github.com/kailas-cloud/lexdex/internal/db"
	dbRedis "github.com/kailas-cloud/lexdex/internal/db/redis"
	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/ranking"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	"github.com/kailas-cloud/lexdex/internal/metrics"
	"github.com/kailas-cloud/lexdex/internal/repository/artifact"
	budgetrepo "github.com/kailas-cloud/lexdex/internal/repository/budget"
	"github.com/kailas-cloud/lexdex/internal/repository/corpus"
	"github.com/kailas-cloud/lexdex/internal/repository/policy/policycache"
	"github.com/kailas-cloud/lexdex/internal/repository/policy/table"
	openaiChannel "github.com/kailas-cloud/lexdex/internal/transport/openai"
	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
	"github.com/kailas-cloud/lexdex/internal/usecase/budget"
	"github.com/kailas-cloud/lexdex/internal/usecase/catalog"
	rankinguc "github.com/kailas-cloud/lexdex/internal/usecase/ranking"
)

// OpenStore connects to redis/valkey and waits until it answers. It returns
// nil when no configured component needs the store.
func OpenStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if !cfg.UsesDatabase() {
		return nil, nil
	}
	// rueidis speaks to both redis and valkey.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:     cfg.Database.Addrs,
		Username:  cfg.Database.Username,
		Password:  cfg.Database.Password,
		DB:        cfg.Database.DB,
		KeyPrefix: cfg.Database.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// Corpus is a corpus source that may hold resources.
type Corpus interface {
	catalog.CorpusSource
	Close() error
}

type yamlCorpus struct{ *corpus.YAMLFile }

func (yamlCorpus) Close() error { return nil }

// OpenCorpus opens the configured article source.
func OpenCorpus(ctx context.Context, cfg config.Config) (Corpus, error) {
	switch cfg.Corpus.Driver {
	case "yaml":
		return yamlCorpus{corpus.NewYAMLFile(cfg.Corpus.Path)}, nil
	case "sqlite":
		store, err := corpus.OpenSQLite(ctx, cfg.Corpus.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown corpus driver %q", cfg.Corpus.Driver)
	}
}

// NewArtifacts creates the artifact repository. store may be nil unless the
// driver is redis.
func NewArtifacts(cfg config.Config, store db.KVStore, logger *zap.Logger) (*artifact.Repo, error) {
	comp, err := artifact.ParseCompression(cfg.Artifact.Compression)
	if err != nil {
		return nil, err
	}
	var backend artifact.Backend
	switch cfg.Artifact.Driver {
	case "file":
		backend = artifact.NewFileBackend(cfg.Artifact.Path)
	case "redis":
		if store == nil {
			return nil, fmt.Errorf("artifact driver redis needs a database")
		}
		backend = artifact.NewKVBackend(store, cfg.Artifact.Key)
	default:
		return nil, fmt.Errorf("unknown artifact driver %q", cfg.Artifact.Driver)
	}
	return artifact.New(backend, comp, logger), nil
}

// SharedStore is the slice of the database the policy chain uses.
type SharedStore interface {
	db.KVStore
	db.Counter
}

// NewPolicyChannel assembles the policy channel chain:
// table or OpenAI -> optional token budget -> optional KV cache.
// The returned tracker is nil when no budget is configured.
func NewPolicyChannel(
	ctx context.Context, cfg config.Config, v vendor.Vendor, store SharedStore, logger *zap.Logger,
) (PolicyChannel, *budget.Tracker, error) {
	var (
		ch      PolicyChannel
		tracker *budget.Tracker
	)
	switch cfg.Policy.Channel {
	case "table":
		responses, err := table.Load(cfg.Policy.TablePath)
		if err != nil {
			return nil, nil, err
		}
		ch = table.New(responses, v)
		logger.Info("Policy table loaded", zap.Int("entries", len(responses)))
	case "openai":
		ch = openaiChannel.NewChannel(&openaiChannel.Config{
			APIKey:    cfg.Policy.OpenAI.APIKey,
			BaseURL:   cfg.Policy.OpenAI.BaseURL,
			Model:     cfg.Policy.OpenAI.Model,
			MaxTokens: cfg.Policy.OpenAI.MaxTokens,
			User:      string(v),
			Logger:    logger,
		})
		if b := cfg.Policy.Budget; b.Enabled() {
			tracker = budget.NewTracker(cfg.Policy.Channel, budget.Limits{
				Daily:   b.DailyTokenLimit,
				Monthly: b.MonthlyTokenLimit,
				Action:  budget.Action(b.Action),
			}, logger)
			if b.Persist && store != nil {
				tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
			}
			ch = budget.NewChannel(ch, cfg.Policy.Channel, tracker, logger)
		}
	default:
		return nil, nil, fmt.Errorf("unknown policy channel %q", cfg.Policy.Channel)
	}

	// Outermost, so cached answers spend no budget.
	if cfg.Policy.Cache && store != nil {
		ttl := time.Duration(cfg.Policy.CacheTTLSec) * time.Second
		ch = policycache.New(ch, store, ttl, metrics.PolicyCacheTotal, logger)
	}
	return ch, tracker, nil
}

// PolicyChannel is a policy channel that can report its health.
type PolicyChannel interface {
	domain.PolicyChannel
	domain.HealthChecker
}

// Pipeline is the assembled question-answering pipeline.
type Pipeline struct {
	Catalog   *catalog.Catalog
	Ranking   *rankinguc.Service
	Admission *admission.Service
	Policy    PolicyChannel
	Budget    *budget.Tracker // nil without a token budget
	Vendor    vendor.Vendor
}

// NewPipeline wires catalog, ranking and admission. corpus and artifacts may
// each be nil, but not both.
func NewPipeline(
	ctx context.Context,
	cfg config.Config,
	src catalog.CorpusSource,
	artifacts catalog.ArtifactStore,
	store SharedStore,
	logger *zap.Logger,
) (*Pipeline, error) {
	v, err := vendor.Parse(cfg.Vendor)
	if err != nil {
		return nil, err
	}
	sel, err := ranking.ParseSelection(cfg.Ranking.Selection)
	if err != nil {
		return nil, err
	}
	vectorizer, err := lexical.NewVectorizer(cfg.Index)
	if err != nil {
		return nil, err
	}
	policy, tracker, err := NewPolicyChannel(ctx, cfg, v, store, logger)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(src, vectorizer, artifacts, logger)
	rank := rankinguc.New(cat, sel)
	return &Pipeline{
		Catalog:   cat,
		Ranking:   rank,
		Admission: admission.New(rank, policy, v, logger),
		Policy:    policy,
		Budget:    tracker,
		Vendor:    v,
	}, nil
}
