package main

import (
	"context"
	"time"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Evaluate a graph definition and print its results",
	Long: `Loads the graph, runs a recompute pass and prints every combinator result.
Values can be overridden with --set id=value; each assignment triggers its own pass.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watchMode, _ := cmd.Flags().GetBool("watch")
		quiet, _ := cmd.Flags().GetBool("quiet")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Execute(sigCtx, cli.RunOptions{
			Path:     args[0],
			Sets:     sets,
			JSON:     jsonMode,
			Watch:    watchMode,
			Quiet:    quiet,
			Debounce: debounce,
		}, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArray("set", nil, "Override a value node (id=value); repeatable")
	runCmd.Flags().Bool("json", false, "Print results as JSON")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run whenever the file changes")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	runCmd.Flags().Duration("debounce", 100*time.Millisecond, "Quiet period after a file event before --watch reloads")
}
