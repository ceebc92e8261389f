package cli

import (
	"github.com/rcliao/draftpad/internal/server"
	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the file-storage and search API over HTTP",
		Long:  "Serve GET/PUT /api/files/{category}/{filename} and GET /api/v1/search from the local database, so `edit` can run with backend = \"http\".",
		Run:   runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (default from config, 127.0.0.1:8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Listen = listen
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		exitErr("open log", err)
	}
	defer log.Close()

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	log.Info("serving", "db", cfg.DBPath)
	if err := server.New(s, log.Logger).ListenAndServe(cmd.Context(), cfg.Listen); err != nil {
		exitErr("serve", err)
	}
}
