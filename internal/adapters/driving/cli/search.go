package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	getJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <collection> [query...]",
	Short: "Search an index collection",
	Long: `Searches the structured fields and contextual text of indexed records.
Every query term must match. With no query the most recent entries are shown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var getCmd = &cobra.Command{
	Use:   "get <collection> <key>",
	Short: "Show an indexed record",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var countCmd = &cobra.Command{
	Use:   "count <collection>",
	Short: "Count the records in a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output the record as JSON")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(countCmd)
}

// entryJSON is the JSON form of an index entry.
type entryJSON struct {
	Collection     string        `json:"collection"`
	Key            string        `json:"key"`
	Fields         domain.Fields `json:"fields"`
	ContextualText string        `json:"contextual_text"`
	IndexedAt      time.Time     `json:"indexed_at"`
}

func toJSON(e domain.IndexEntry) entryJSON {
	return entryJSON{
		Collection:     e.Collection,
		Key:            e.Key,
		Fields:         e.Fields,
		ContextualText: e.ContextualText,
		IndexedAt:      e.IndexedAt,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	collection := args[0]
	query := strings.Join(args[1:], " ")

	entries, err := searchService.Search(cmd.Context(), collection, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		out := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, toJSON(e))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if len(entries) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Key", "Name", "Indexed"})
	for i, e := range entries {
		name := e.Fields.String("name")
		if name == "" {
			name = e.ContextualText
		}
		t.AppendRow(table.Row{i + 1, e.Key, truncate(name, 60), e.IndexedAt.Local().Format(time.DateTime)})
	}
	t.Render()
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	entry, err := searchService.Get(cmd.Context(), args[0], args[1])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("record %s not found in %s", args[1], args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	if getJSON {
		return writeJSON(cmd.OutOrStdout(), toJSON(*entry))
	}

	cmd.Printf("Collection: %s\n", entry.Collection)
	cmd.Printf("Key:        %s\n", entry.Key)
	cmd.Printf("Indexed:    %s\n", entry.IndexedAt.Local().Format(time.DateTime))
	cmd.Println()

	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, name := range entry.Fields.Names() {
		var value string
		switch v := entry.Fields[name].(type) {
		case nil:
			value = "(null)"
		case []string:
			value = strings.Join(v, "; ")
		default:
			value = fmt.Sprint(v)
		}
		t.AppendRow(table.Row{name, truncate(value, 100)})
	}
	t.Render()

	if entry.ContextualText != "" {
		cmd.Println()
		cmd.Println(entry.ContextualText)
	}
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	n, err := searchService.Count(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("count failed: %w", err)
	}
	cmd.Printf("%s: %d records\n", args[0], n)
	return nil
}
