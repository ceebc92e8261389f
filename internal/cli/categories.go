package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with file counts",
		Run:   runCategories,
	}

	RootCmd.AddCommand(cmd)
}

func runCategories(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cats, err := s.Categories(cmd.Context())
	if err != nil {
		exitErr("list categories", err)
	}

	if textFormat() {
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d files, %d versions\n", c.Category, c.Files, c.Versions)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), cats)
}
