package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/sluice/pkg/adapters/file"
	"github.com/aretw0/sluice/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check graph definitions for consistency",
	Long:  `Decodes each definition and reports unknown kinds, duplicate ids and dangling connection endpoints.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			if _, err := file.New(path).Load(cmd.Context()); err != nil {
				failed++
				fmt.Fprintf(out, "%s: invalid\n", path)
				if details := schema.ValidationErrors(err); len(details) > 0 {
					for _, d := range details {
						fmt.Fprintf(out, "  - %v\n", d)
					}
				} else {
					fmt.Fprintf(out, "  - %v\n", err)
				}
				continue
			}
			fmt.Fprintf(out, "%s: Graph is valid! ✅\n", path)
		}
		if failed > 0 {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
