package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "links <category> <filename>",
		Short: "Show a file's [[wiki]] links and backlinks",
		Args:  cobra.ExactArgs(2),
		Run:   runLinks,
	}

	RootCmd.AddCommand(cmd)
}

func runLinks(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	set, err := s.Links(cmd.Context(), args[0], args[1])
	if err != nil {
		exitErr("links", err)
	}

	if textFormat() {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "links to:")
		for _, t := range set.Outgoing {
			fmt.Fprintf(out, "  [[%s]]\n", t)
		}
		fmt.Fprintln(out, "linked from:")
		for _, ref := range set.Backlinks {
			fmt.Fprintf(out, "  %s/%s\n", ref.Category, ref.Filename)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), set)
}
