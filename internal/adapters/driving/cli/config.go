package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current configuration",
	Long: `Shows the settings and configured runs.

Use 'config init' to write a configuration file with the default runs.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	settings := configStore.Settings()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("  File:              %s\n", configStore.Path())
	cmd.Printf("  Staging dir:       %s\n", orDefault(settings.StagingDir))
	cmd.Printf("  Index backend:     %s\n", settings.IndexBackend)
	switch settings.IndexBackend {
	case domain.IndexBackendElasticsearch:
		cmd.Printf("  Elasticsearch URL: %s\n", settings.ElasticsearchURL)
	case domain.IndexBackendSQLite:
		cmd.Printf("  Data dir:          %s\n", orDefault(settings.DataDir))
	}
	cmd.Printf("  User agent:        %s\n", settings.UserAgent)
	cmd.Printf("  Fetch timeout:     %s\n", settings.Timeout())
	cmd.Printf("  Requests/second:   %g\n", settings.RequestsPerSecond)
	cmd.Printf("  Concurrency:       %d\n", settings.Concurrency)
	if settings.MetricsFile != "" {
		cmd.Printf("  Metrics file:      %s\n", settings.MetricsFile)
	}
	cmd.Println()

	if len(settings.Runs) == 0 {
		cmd.Println("No runs configured.")
		return nil
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Run", "Source", "Doc Type", "Collection", "ID Field", "Input File"})
	for _, r := range settings.Runs {
		t.AppendRow(table.Row{r.RunName(), r.Source, r.DocType, r.Collection, r.IDField, r.InputFile})
	}
	t.Render()
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	path := configStore.Path()
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := configStore.Update(domain.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	cmd.Printf("Wrote default configuration to %s\n", path)
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
