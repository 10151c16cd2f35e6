// lexdex-eval runs a labelled dataset through the admission pipeline and
// prints the accuracy report as YAML.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/bootstrap"
	"github.com/kailas-cloud/lexdex/internal/config"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/repository/dataset"
	"github.com/kailas-cloud/lexdex/internal/usecase/evaluation"
	"github.com/kailas-cloud/lexdex/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		datasetPath string
		outputPath  string
		withResults bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("lexdex-eval", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "config file (default: config/$ENV.yaml)")
	flagSet.StringVarP(&datasetPath, "dataset", "d", "data/reference_dataset.csv", "labelled dataset CSV")
	flagSet.StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
	flagSet.BoolVar(&withResults, "results", false, "include per-example results in the report")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Println(version.String("lexdex-eval"))
		return nil
	}

	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, logpkg.WithLevel(cfg.Logging.Level), logpkg.WithComponent("lexdex-eval"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := evaluate(ctx, cfg, datasetPath, logger)
	if err != nil {
		return err
	}
	if !withResults {
		report.Results = nil
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(filepath.Clean(outputPath))
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return enc.Close()
}

func evaluate(ctx context.Context, cfg config.Config, datasetPath string, logger *zap.Logger) (evaluation.Report, error) {
	examples, err := dataset.LoadFile(datasetPath)
	if err != nil {
		return evaluation.Report{}, err
	}

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return evaluation.Report{}, err
	}
	if store != nil {
		defer store.Close()
	}
	src, err := bootstrap.OpenCorpus(ctx, cfg)
	if err != nil {
		return evaluation.Report{}, err
	}
	defer func() { _ = src.Close() }()
	artifacts, err := bootstrap.NewArtifacts(cfg, store, logger)
	if err != nil {
		return evaluation.Report{}, err
	}

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, src, artifacts, store, logger)
	if err != nil {
		return evaluation.Report{}, err
	}
	if err := pipeline.Catalog.Start(ctx); err != nil {
		return evaluation.Report{}, fmt.Errorf("publish index: %w", err)
	}

	logger.Info("Evaluating dataset",
		zap.String("dataset", datasetPath),
		zap.Int("examples", len(examples)),
		zap.String("vendor", string(pipeline.Vendor)),
	)
	return evaluation.New(pipeline.Admission, string(pipeline.Vendor), logger).Run(ctx, examples)
}
