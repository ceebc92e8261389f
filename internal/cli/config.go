package cli

import (
	"fmt"
	"os"

	"github.com/rcliao/draftpad/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the effective configuration as TOML. With --init, write the defaults to the config file if it does not exist yet.",
		Run:   runConfig,
	}

	cmd.Flags().Bool("init", false, "Write a default config file")

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	if initFile, _ := cmd.Flags().GetBool("init"); initFile {
		path := configPath
		if path == "" {
			path = config.Path()
		}
		if _, err := os.Stat(path); err == nil {
			exitErr("init config", fmt.Errorf("%s already exists", path))
		}
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			exitErr("init config", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return
	}

	cfg, _, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if err := config.Encode(cmd.OutOrStdout(), cfg); err != nil {
		exitErr("encode config", err)
	}
}
