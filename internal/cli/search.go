package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/draftpad/internal/model"
	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search files by keyword",
		Long:  "Search file content, filenames, and chunks for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("category", "", "Filter by category")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Category: category,
		Query:    query,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	hits := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		hits = append(hits, r.Hit(query))
	}

	if textFormat() {
		for _, h := range hits {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n    %s\n", h.Path, h.Title, h.Excerpt)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), hits)
}
