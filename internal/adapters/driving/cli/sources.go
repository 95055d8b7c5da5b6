package cli

import (
	"errors"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available source types",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if sourceRegistry == nil {
		return errors.New("source registry not configured")
	}

	types := sourceRegistry.List()
	if len(types) == 0 {
		cmd.Println("No sources registered.")
		return nil
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Name", "Document Types", "Default ID Field"})
	for _, st := range types {
		docTypes := make([]string, 0, len(st.DocTypes))
		for _, d := range st.DocTypes {
			docTypes = append(docTypes, d.String())
		}
		t.AppendRow(table.Row{st.ID, st.Name, strings.Join(docTypes, ", "), st.DefaultIDField})
	}
	t.Render()
	return nil
}
