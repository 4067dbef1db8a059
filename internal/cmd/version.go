package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"console3/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the console3 version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.DisplayVersion())
			return nil
		},
	}
}
