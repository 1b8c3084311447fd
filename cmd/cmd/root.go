package cmd

import (
	"fmt"
	"io"

	"github.com/ostafen/gptfmt/internal/config"
	"github.com/ostafen/gptfmt/internal/env"
	"github.com/ostafen/gptfmt/internal/logger"
	"github.com/spf13/cobra"
)

const AppName = env.AppName

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     AppName,
		Short:   AppName + " - GPT partition table formatter",
		Version: fmt.Sprintf("%s (commit %s, built %s)", env.Version, env.CommitHash, env.BuildTime),
	}

	rootCmd.PersistentFlags().String("config", "", "path to a config file (default: gptfmt.yaml in ., $HOME/.gptfmt or /etc/gptfmt)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR")

	rootCmd.AddCommand(
		DefineFormatCommand(),
		DefineReportCommand(),
		DefinePlanCommand(),
		DefineMountCommand(),
	)
	return rootCmd
}

// setup loads the configuration and builds the logger shared by a command.
func setup(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	return cfg, newLogger(cmd.ErrOrStderr(), level), nil
}

func newLogger(w io.Writer, level string) *logger.Logger {
	return logger.New(w, logger.ParseLevel(level))
}
