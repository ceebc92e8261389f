package cli

import (
	"fmt"

	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <category> <filename>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(2),
		Run:   runGet,
	}

	cmd.Flags().Bool("history", false, "Return all versions (newest first)")
	cmd.Flags().IntP("version", "v", 0, "Specific version number")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	history, _ := cmd.Flags().GetBool("history")
	version, _ := cmd.Flags().GetInt("version")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	files, err := s.Get(cmd.Context(), store.GetParams{
		Category: args[0],
		Filename: args[1],
		History:  history,
		Version:  version,
	})
	if err != nil {
		exitErr("get", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case textFormat() && !history:
		fmt.Fprint(out, files[0].Content)
		if files[0].Content != "" {
			fmt.Fprintln(out)
		}
	case history:
		printJSON(out, files)
	default:
		printJSON(out, files[0])
	}
}
