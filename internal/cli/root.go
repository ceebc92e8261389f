// Package cli implements the draftpad CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/draftpad/internal/config"
	"github.com/rcliao/draftpad/internal/logging"
	"github.com/rcliao/draftpad/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	formatFlag string
	configPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "draftpad",
	Short: "Markdown notes with autosave and search",
	Long:  "A small markdown notebook. Edit files with autosave, search them, follow [[wiki]] links. SQLite-backed or talks to a remote file service.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $DRAFTPAD_DB or ~/.draftpad/draftpad.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.draftpad/config.toml)")
}

// loadConfig reads the config file and applies the --db flag on top.
func loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, loader, nil
}

func getDBPath() string {
	cfg, _, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// newLogger builds a logger from cfg. output overrides the destination.
func newLogger(cfg *config.Config, output string) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	if cfg.Log.File != "" {
		output = "file"
	}
	return logging.New(logging.Config{
		Level:    level,
		Format:   format,
		Output:   output,
		FilePath: cfg.Log.File,
	})
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

func textFormat() bool { return formatFlag == "text" }

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
