package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	path := getDBPath()
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), path)
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\nfiles: %d  versions: %d  chunks: %d  links: %d\n",
			stats.DBPath, stats.DBSizeBytes, stats.ActiveFiles, stats.TotalVersions, stats.TotalChunks, stats.TotalLinks)
		return
	}
	printJSON(cmd.OutOrStdout(), stats)
}
