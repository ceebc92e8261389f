package cli

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rcliao/draftpad/internal/config"
	"github.com/rcliao/draftpad/internal/logging"
	"github.com/rcliao/draftpad/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit <category> <filename>",
		Short: "Open a file in the terminal editor",
		Long: `Open a file in the terminal editor. Changes are saved automatically after
a quiet period; Ctrl+S saves immediately, Ctrl+E toggles preview, Ctrl+F searches.
Logs go to log.file (default ~/.draftpad/draftpad.log) to keep the screen clean.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         runEdit,
	}

	RootCmd.AddCommand(cmd)
}

// runEdit returns errors instead of exiting so the session, backend and log
// are always closed.
func runEdit(cmd *cobra.Command, args []string) error {
	cfg, loader, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(config.Dir(), "draftpad.log")
	}
	log, err := newLogger(cfg, "file")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	return edit(cmd.Context(), cfg, loader, log, args[0], args[1], runProgram)
}

// runProgram drives m on the terminal until it quits.
func runProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func edit(ctx context.Context, cfg *config.Config, loader *config.Loader, log *logging.Logger,
	category, filename string, run func(context.Context, tea.Model) error) error {
	be, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer be.Close()

	notifier := &statusNotifier{}
	sess := session.New(session.Options{
		Files:          be.files,
		Index:          be.index,
		Notifier:       notifier,
		Logger:         log.Logger,
		QuietPeriod:    cfg.Autosave.QuietPeriod.Std(),
		SearchDebounce: cfg.Search.Debounce.Std(),
		RelatedLimit:   cfg.Search.RelatedLimit,
		StrictSpans:    cfg.StrictSpans,
	})

	if err := sess.Start(ctx, category, filename); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.Teardown()

	loader.OnChange(func(c *config.Config) {
		sess.SetQuietPeriod(c.Autosave.QuietPeriod.Std())
		if level, err := logging.ParseLevel(c.Log.Level); err == nil {
			log.SetLevel(level)
		}
		log.Info("config reloaded", "path", loader.Path())
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config hot reload disabled", "err", err)
	} else {
		defer loader.Close()
	}

	if err := run(ctx, newEditorModel(ctx, sess, notifier)); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
