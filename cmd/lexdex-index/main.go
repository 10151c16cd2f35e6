// lexdex-index fits the TF-IDF index over the configured corpus and writes
// the artifact the API server loads on start and on reload.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/bootstrap"
	"github.com/kailas-cloud/lexdex/internal/config"
	"github.com/kailas-cloud/lexdex/internal/lexical"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/repository/corpus"
	"github.com/kailas-cloud/lexdex/internal/version"
)

// defaultTitleWeight matches the weight the reference index was built with.
const defaultTitleWeight = 4

type options struct {
	configPath  string
	titleWeight int
	corpusPath  string
	importPath  string
	output      string
	compression string
	showVersion bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("lexdex-index", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "config file (default: config/$ENV.yaml)")
	flagSet.IntVar(&opts.titleWeight, "title-weight", defaultTitleWeight, "extra title repetitions per document")
	flagSet.StringVar(&opts.corpusPath, "corpus", "", "override corpus.path")
	flagSet.StringVar(&opts.importPath, "import", "", "replace the sqlite corpus with articles from this YAML/JSON file first")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write the artifact to this file instead of the configured store")
	flagSet.StringVar(&opts.compression, "compression", "", "override artifact.compression (zstd, lz4, none)")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.showVersion {
		fmt.Println(version.String("lexdex-index"))
		return nil
	}

	env := config.GetEnv()
	cfg, err := loadConfig(env, opts)
	if err != nil {
		return err
	}

	logger, err := logpkg.New(env, logpkg.WithLevel(cfg.Logging.Level), logpkg.WithComponent("lexdex-index"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return index(ctx, cfg, opts, logger)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(env string, opts options) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.Index.TitleWeight = opts.titleWeight
	if opts.corpusPath != "" {
		cfg.Corpus.Path = opts.corpusPath
	}
	if opts.output != "" {
		cfg.Artifact.Driver = "file"
		cfg.Artifact.Path = opts.output
	}
	if opts.compression != "" {
		cfg.Artifact.Compression = opts.compression
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func index(ctx context.Context, cfg config.Config, opts options, logger *zap.Logger) error {
	if opts.importPath != "" {
		if err := importCorpus(ctx, cfg, opts.importPath, logger); err != nil {
			return err
		}
	}

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	src, err := bootstrap.OpenCorpus(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	articles, err := src.Articles(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	start := time.Now()
	ix, err := lexical.Fit(articles, cfg.Index)
	if err != nil {
		return fmt.Errorf("fit index: %w", err)
	}
	logger.Info("Index fitted",
		zap.Int("documents", ix.Len()),
		zap.Int("vocabulary", ix.VocabularySize()),
		zap.Int("title_weight", cfg.Index.TitleWeight),
		zap.Duration("duration", time.Since(start)),
	)

	artifacts, err := bootstrap.NewArtifacts(cfg, store, logger)
	if err != nil {
		return err
	}
	m, err := artifacts.Save(ctx, ix)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	logger.Info("Artifact written",
		zap.String("driver", cfg.Artifact.Driver),
		zap.String("compression", cfg.Artifact.Compression),
		zap.String("fingerprint", m.Fingerprint),
	)
	return nil
}

// importCorpus replaces the sqlite corpus with the articles in path.
func importCorpus(ctx context.Context, cfg config.Config, path string, logger *zap.Logger) error {
	if cfg.Corpus.Driver != "sqlite" {
		return fmt.Errorf("--import needs corpus.driver sqlite, got %q", cfg.Corpus.Driver)
	}
	articles, err := corpus.NewYAMLFile(path).Articles(ctx)
	if err != nil {
		return err
	}
	store, err := corpus.OpenSQLite(ctx, cfg.Corpus.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Replace(ctx, articles); err != nil {
		return fmt.Errorf("import corpus: %w", err)
	}
	logger.Info("Corpus imported",
		zap.String("from", path),
		zap.String("into", cfg.Corpus.Path),
		zap.Int("articles", len(articles)),
	)
	return nil
}
