package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [run...]",
	Short: "Re-run notebook harvests when their CSV files change",
	Long: `Watches the input files of tabular runs and re-runs the pipeline for a
run whenever its file is written. Runs without an input file are ignored.
Stop with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watcher == nil {
		return errors.New("watcher not configured")
	}

	runs, err := selectRuns(args)
	if err != nil {
		return err
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	return watcher.Watch(cmd.Context(), runs, func(result *domain.BatchResult, err error) {
		if err != nil {
			cmd.PrintErrf("Run failed: %v\n", err)
			return
		}
		cmd.Printf("%s: %d indexed, %d failed (%s)\n",
			result.Name, result.Indexed, len(result.Failures), result.Duration())
	})
}
