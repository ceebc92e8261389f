package cli

import (
	"fmt"
	"time"

	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history <category> <filename>",
		Short: "List the saved versions of a file",
		Args:  cobra.ExactArgs(2),
		Run:   runHistory,
	}

	RootCmd.AddCommand(cmd)
}

type versionInfo struct {
	Version      int       `json:"version"`
	LastModified time.Time `json:"lastModified"`
	Bytes        int       `json:"bytes"`
}

func runHistory(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	files, err := s.Get(cmd.Context(), store.GetParams{Category: args[0], Filename: args[1], History: true})
	if err != nil {
		exitErr("history", err)
	}

	versions := make([]versionInfo, 0, len(files))
	for _, f := range files {
		versions = append(versions, versionInfo{Version: f.Version, LastModified: f.LastModified, Bytes: len(f.Content)})
	}

	if textFormat() {
		for _, v := range versions {
			fmt.Fprintf(cmd.OutOrStdout(), "v%-4d %s  %d bytes\n", v.Version, v.LastModified.Local().Format(time.DateTime), v.Bytes)
		}
		return
	}
	printJSON(cmd.OutOrStdout(), versions)
}
