// Package cmd implements console3's command-line surface.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "console3",
		Short: "A terminal emulator core",
		Long:  "console3 runs a shell inside a pseudo-terminal and renders it through an embedded VT100/ECMA-48 parser.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			refreshTerminalColorHintsCache()
			return nil
		},
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
