// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taskdeck/internal/board"
	"github.com/pdiddy/taskdeck/internal/index"
	"github.com/pdiddy/taskdeck/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search tasks with full-text search and filters",
	Long: `Search queries the project's task index using FTS5 full-text search,
structured filters (status, label), or a combination of both. The index
is synced from the board file before searching; unchanged boards skip
the re-index.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	dir, err := projectDir(cmd)
	if err != nil {
		return err
	}

	store, err := index.NewStore(appConfig().Index, dir)
	if err != nil {
		return err
	}
	defer store.Close()

	boardPath := board.NewStore(dir).Path()
	if _, err := store.Sync(context.Background(), boardPath, os.Stderr); err != nil {
		return err
	}

	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	status, _ := cmd.Flags().GetString("status")
	label, _ := cmd.Flags().GetString("label")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := index.QueryOptions{
		Query:      queryText,
		Status:     types.TaskStatus(status),
		Label:      label,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --status, or --label")
	}

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []index.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-36s  %-12s  %-40s  %s\n",
		"Rank", "ID", "Status", "Title", "Labels")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-36s  %-12s  %-40s  %s\n",
			i+1, r.ID, r.Status, truncate(r.Title, 40), strings.Join(r.Labels, ","))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "full-text search query")
	searchCmd.Flags().String("status", "", "filter by status")
	searchCmd.Flags().String("label", "", "filter by label")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
