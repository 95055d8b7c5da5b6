package cli

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list <run>",
	Short: "List documents without fetching them",
	Long: `Runs the listing stage of a run and saves the references to the staging
area, where 'harvest --resume' picks them up.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output references as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if pipelineDriver == nil {
		return errors.New("pipeline not configured")
	}

	runs, err := selectRuns(args)
	if err != nil {
		return err
	}

	refs, err := pipelineDriver.List(cmd.Context(), runs[0])
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	if listJSON {
		return writeJSON(cmd.OutOrStdout(), refs)
	}

	if len(refs) == 0 {
		cmd.Println("No documents listed.")
		return nil
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Identifier", "Source URL"})
	for i, ref := range refs {
		t.AppendRow(table.Row{i + 1, ref.Identifier, ref.SourceURL})
	}
	t.AppendFooter(table.Row{"", "Total", len(refs)})
	t.Render()
	return nil
}
