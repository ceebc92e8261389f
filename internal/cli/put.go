package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put <category> <filename> [content]",
		Short: "Store a new version of a file",
		Long:  "Store a new version of a file. Content can be a positional arg, --from a file, or piped via stdin.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runPut,
	}

	cmd.Flags().String("from", "", "Read content from this file")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	category, filename := args[0], args[1]
	from, _ := cmd.Flags().GetString("from")

	var content string
	switch {
	case len(args) > 2:
		content = strings.Join(args[2:], " ")
	case from != "":
		b, err := os.ReadFile(from)
		if err != nil {
			exitErr("read file", err)
		}
		content = string(b)
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	f, err := s.Put(cmd.Context(), store.PutParams{
		Category: category,
		Filename: filename,
		Content:  content,
	})
	if err != nil {
		exitErr("put", err)
	}

	if textFormat() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s v%d (%d chunks)\n", f.Category, f.Filename, f.Version, f.ChunkCount)
		return
	}
	f.Content = ""
	printJSON(cmd.OutOrStdout(), f)
}
