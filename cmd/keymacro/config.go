package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.cfg.TOML()
			if err != nil {
				return err
			}
			fmt.Fprint(c.stdout, out)
			return nil
		},
	}
}
