// Command sercha-harvest harvests dataset and notebook metadata into a search index.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/index"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/staging/filesystem"
	"github.com/custodia-labs/sercha-harvest/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-harvest/internal/connectors"
	"github.com/custodia-labs/sercha-harvest/internal/connectors/web"
	"github.com/custodia-labs/sercha-harvest/internal/core/services"
	"github.com/custodia-labs/sercha-harvest/internal/logger"
)

// Set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires adapters and services from the configuration file.
func bootstrap(_ context.Context, configPath string) (cli.Services, func() error, error) {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading config: %w", err)
	}
	settings := store.Settings()
	logger.Debug("Loaded config from %s", store.Path())

	staging, err := filesystem.New(settings.StagingDir)
	if err != nil {
		return cli.Services{}, nil, err
	}

	idx, err := index.Open(settings)
	if err != nil {
		return cli.Services{}, nil, err
	}
	logger.Debug("Using %s index", settings.IndexBackend)

	client := web.NewClient(web.Options{
		UserAgent:         settings.UserAgent,
		Timeout:           settings.Timeout(),
		RequestsPerSecond: settings.RequestsPerSecond,
	})

	factory := connectors.NewFactory()
	connectors.RegisterDefaults(factory, connectors.Dependencies{
		Client:  client,
		Staging: staging,
	})

	metrics := prometheus.NewRecorder()
	pipeline := services.NewPipeline(factory, idx, staging,
		services.WithConcurrency(settings.Concurrency),
		services.WithMetrics(metrics),
	)

	svc := cli.Services{
		Pipeline: pipeline,
		Search:   services.NewSearchService(idx),
		Sources:  services.NewSourceRegistry(factory),
		Watcher:  services.NewWatcher(pipeline, services.DefaultDebounce),
		Config:   store,
	}

	cleanup := func() error {
		var errs []error
		if settings.MetricsFile != "" {
			if err := metrics.WriteTextfile(settings.MetricsFile); err != nil {
				errs = append(errs, fmt.Errorf("writing metrics: %w", err))
			}
		}
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing index: %w", err))
		}
		return errors.Join(errs...)
	}

	return svc, cleanup, nil
}
