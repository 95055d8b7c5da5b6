package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-harvest/internal/logger"
)

// Services are the ports the commands drive.
type Services struct {
	Pipeline driving.PipelineDriver
	Search   driving.SearchService
	Sources  driving.SourceRegistry
	Watcher  driving.Watcher
	Config   driven.ConfigStore
}

// Bootstrap builds the services from the configuration file at path.
// The returned cleanup runs once the command finishes.
type Bootstrap func(ctx context.Context, path string) (Services, func() error, error)

var (
	version = "dev"

	pipelineDriver driving.PipelineDriver
	searchService  driving.SearchService
	sourceRegistry driving.SourceRegistry
	watcher        driving.Watcher
	configStore    driven.ConfigStore

	bootstrap Bootstrap
	cleanup   func() error

	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sercha-harvest",
	Short: "Harvest dataset metadata into a search index",
	Long: `sercha-harvest lists documents from configured sources, fetches them,
converts them into flat metadata records and upserts them into a search index.

Sources include the ICOS Carbon Portal (dataset landing pages listed via
SPARQL) and CSV exports of Kaggle and GitHub notebooks.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.sercha-harvest/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by commands.
func SetServices(s Services) {
	pipelineDriver = s.Pipeline
	searchService = s.Search
	sourceRegistry = s.Sources
	watcher = s.Watcher
	configStore = s.Config
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and then any cleanup registered by bootstrap.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		if cerr := cleanup(); cerr != nil {
			logger.Warn("cleanup: %v", cerr)
			if err == nil {
				err = cerr
			}
		}
		cleanup = nil
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if bootstrap == nil || cmd == versionCmd {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

// selectRuns returns the configured runs named in args, or all runs.
func selectRuns(args []string) ([]domain.RunConfig, error) {
	if configStore == nil {
		return nil, errors.New("configuration not loaded")
	}
	settings := configStore.Settings()

	if len(args) == 0 {
		if len(settings.Runs) == 0 {
			return nil, fmt.Errorf("no runs configured in %s", configStore.Path())
		}
		return settings.Runs, nil
	}

	runs := make([]domain.RunConfig, 0, len(args))
	for _, name := range args {
		run, err := settings.Run(name)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
