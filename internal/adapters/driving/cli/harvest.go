package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

var (
	harvestResume      bool
	harvestConcurrency int
	harvestJSON        bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [run...]",
	Short: "Run the harvest pipeline",
	Long: `Lists, fetches, converts and indexes documents for the named runs.
If no run is named, every configured run is executed in order.

Records that fail to fetch, convert or index are reported and skipped.
A failed listing aborts that run; the remaining runs still execute.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().BoolVar(&harvestResume, "resume", false, "reuse the listing saved by the previous run")
	harvestCmd.Flags().IntVarP(&harvestConcurrency, "concurrency", "j", 0, "parallel fetches (0 = configured default)")
	harvestCmd.Flags().BoolVar(&harvestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if pipelineDriver == nil {
		return errors.New("pipeline not configured")
	}

	runs, err := selectRuns(args)
	if err != nil {
		return err
	}
	for i := range runs {
		runs[i].Resume = harvestResume
		if harvestConcurrency > 0 {
			runs[i].Concurrency = harvestConcurrency
		}
	}

	ctx := cmd.Context()

	var results []*domain.BatchResult
	if isTerminal(cmd.OutOrStdout()) && !harvestJSON {
		var errs []error
		for _, run := range runs {
			result, err := runWithProgress(ctx, cmd, run)
			if err != nil {
				errs = append(errs, fmt.Errorf("run %s: %w", run.RunName(), err))
				continue
			}
			results = append(results, result)
		}
		err = errors.Join(errs...)
	} else {
		results, err = pipelineDriver.RunAll(ctx, runs)
	}

	if harvestJSON {
		if jerr := writeJSON(cmd.OutOrStdout(), summarise(results)); jerr != nil {
			return jerr
		}
	} else {
		outputHarvestTable(cmd.OutOrStdout(), results)
	}

	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}
	return nil
}

// runWithProgress runs one pipeline while displaying progress updates.
func runWithProgress(ctx context.Context, cmd *cobra.Command, run domain.RunConfig) (*domain.BatchResult, error) {
	type outcome struct {
		result *domain.BatchResult
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := pipelineDriver.Run(ctx, run)
		done <- outcome{result, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case o := <-done:
			cmd.Print("\r\033[K")
			return o.result, o.err
		case <-ticker.C:
			// Best effort
			status, err := pipelineDriver.Status(ctx, run.RunName())
			if err == nil && status != nil && status.Running {
				cmd.Printf("\r\033[K%s: %s %d/%d (%d errors)",
					run.RunName(), status.Stage, status.Processed, status.Total, status.ErrorCount)
			}
		}
	}
}

type failureSummary struct {
	Identifier string `json:"identifier"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

type runSummary struct {
	RunID      string           `json:"run_id"`
	Name       string           `json:"name"`
	Source     string           `json:"source"`
	Collection string           `json:"collection"`
	Listed     int              `json:"listed"`
	Fetched    int              `json:"fetched"`
	Converted  int              `json:"converted"`
	Indexed    int              `json:"indexed"`
	Failed     int              `json:"failed"`
	Duration   string           `json:"duration"`
	Failures   []failureSummary `json:"failures,omitempty"`
}

func summarise(results []*domain.BatchResult) []runSummary {
	out := make([]runSummary, 0, len(results))
	for _, r := range results {
		s := runSummary{
			RunID:      r.RunID,
			Name:       r.Name,
			Source:     r.Source,
			Collection: r.Collection,
			Listed:     r.Listed,
			Fetched:    r.Fetched,
			Converted:  r.Converted,
			Indexed:    r.Indexed,
			Failed:     len(r.Failures),
			Duration:   r.Duration().Round(time.Millisecond).String(),
		}
		for _, f := range r.Failures {
			s.Failures = append(s.Failures, failureSummary{
				Identifier: f.Identifier,
				Stage:      f.Stage.String(),
				Error:      f.Err.Error(),
			})
		}
		out = append(out, s)
	}
	return out
}

func outputHarvestTable(w io.Writer, results []*domain.BatchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No runs completed.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Collection", "Listed", "Fetched", "Converted", "Indexed", "Failed", "Duration"})
	for _, r := range results {
		t.AppendRow(table.Row{
			r.Name, r.Collection, r.Listed, r.Fetched, r.Converted, r.Indexed,
			len(r.Failures), r.Duration().Round(time.Millisecond),
		})
	}
	t.Render()

	for _, r := range results {
		if len(r.Failures) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s failures:\n", r.Name)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  [%s] %s: %v\n", f.Stage, f.Identifier, f.Err)
		}
	}
}
