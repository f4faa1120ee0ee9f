package main

import (
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a graph definition in another format",
	Long:  `Reads a YAML, JSON or HCL definition and writes it in the format given by the output file extension.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := file.New(args[0]).Load(cmd.Context())
		if err != nil {
			return err
		}
		if err := file.New(args[1]).Save(cmd.Context(), def); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", args[1], file.FormatOf(args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
