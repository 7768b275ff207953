package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"salesdb/internal/config"
	"salesdb/internal/metrics"
	"salesdb/internal/metrics/datadog"
	"salesdb/internal/storage"

	// Register every storage backend with the factory; config selects one.
	_ "salesdb/internal/storage/all"
)

// app bundles the pieces every subcommand needs: config, logger, store,
// metrics. Built once per invocation by setup, torn down by Close.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store storage.Store

	closeMetrics func()
}

func setup(ctx context.Context) (*app, error) {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.New(ctx, storage.Config{
		Kind: cfg.Storage.Kind,
		DSN:  cfg.Storage.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{cfg: cfg, log: log, store: store}
	a.initMetrics(ctx)
	return a, nil
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func (a *app) initMetrics(ctx context.Context) {
	switch a.cfg.Metrics.Backend {
	case "datadog":
		tags := append([]string(nil), a.cfg.Metrics.Tags...)
		tags = append(tags, datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))...)

		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: a.cfg.Metrics.Job,
			Tags:    tags,
		})
		if err != nil {
			a.log.Warn("metrics: datadog init failed, metrics disabled", zap.Error(err))
			return
		}
		metrics.SetBackend(b)
		a.closeMetrics = func() {
			if err := b.Close(); err != nil {
				a.log.Warn("metrics: close", zap.Error(err))
			}
		}
		a.log.Info("metrics: datadog enabled",
			zap.String("job", a.cfg.Metrics.Job), zap.Strings("tags", tags))

	case "", "none":
		// nop backend stays in place

	default:
		a.log.Warn("metrics: unknown backend, metrics disabled",
			zap.String("backend", a.cfg.Metrics.Backend))
	}
}

func (a *app) Close() {
	if a.closeMetrics != nil {
		a.closeMetrics()
	}
	a.store.Close()
	_ = a.log.Sync()
}
