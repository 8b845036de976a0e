package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "keymacro %s\n", version)
			fmt.Fprintf(c.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(c.stdout, "Built: %s\n", date)
		},
	}
}
