package main

import (
	"fmt"
	"io"

	"github.com/nasdf/entity/test"
	"github.com/spf13/cobra"
)

func newCasesCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the embedded scenario cases.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := test.CasePaths()
			if err != nil {
				return err
			}
			for _, path := range paths {
				tc, err := test.LoadCase(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(stdout, "%s\t%s\n", path, tc.Description)
			}
			return nil
		},
	}
}
