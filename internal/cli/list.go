package cli

import (
	"fmt"

	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List files, most recently saved first",
		Args:  cobra.MaximumNArgs(1),
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("names-only", false, "Only output category/filename pairs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	namesOnly, _ := cmd.Flags().GetBool("names-only")

	var category string
	if len(args) > 0 {
		category = args[0]
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	files, err := s.List(cmd.Context(), store.ListParams{
		Category:  category,
		Limit:     limit,
		NamesOnly: namesOnly || textFormat(),
	})
	if err != nil {
		exitErr("list", err)
	}

	if namesOnly || textFormat() {
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", f.Category, f.Filename)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), files)
}
