package main

import (
	"fmt"

	"github.com/aretw0/sluice/internal/cli"
	"github.com/aretw0/sluice/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the graph visualization",
	Long: `Evaluates the graph and outputs a Mermaid diagram with current values and results.
Nodes changed with --set are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		values, order, err := cli.ParseAssignments(sets)
		if err != nil {
			return err
		}

		editor, err := cli.NewEditor(cmd.Context(), args[0], logger)
		if err != nil {
			return err
		}
		for _, id := range order {
			if err := editor.SetValue(id, values[id]); err != nil {
				return fmt.Errorf("--set %s: %w", id, err)
			}
		}

		output := graph.GenerateMermaid(editor.View(), &graph.GraphOverlay{Highlight: order})
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringArray("set", nil, "Override a value node (id=value); repeatable")
}
