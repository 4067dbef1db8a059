// Command console3 hosts the terminal core against the calling tty. See
// internal/cmd for the subcommand tree.
package main

import (
	"fmt"
	"os"

	"console3/internal/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
