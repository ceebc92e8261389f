package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export files as JSON",
		Long:  "Export every live version as a JSON array, oldest first. Filter by category with --category.",
		Run:   runExport,
	}

	cmd.Flags().String("category", "", "Filter by category")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	files, err := s.ExportAll(cmd.Context(), category)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(cmd.OutOrStdout(), files)
}
