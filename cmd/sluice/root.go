package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sluice",
	Short: "Sluice is a reactive numeric dataflow graph",
	Long: `Sluice evaluates graphs of value and adder nodes described in YAML, JSON or HCL,
keeping every combinator result current as values and connections change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		logger, err = cli.NewLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a sluice.yaml configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}
