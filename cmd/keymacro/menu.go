package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keymacro/internal/macro/menu"
)

func (c *cli) menuCmd() *cobra.Command {
	var (
		keys    string
		header  string
		footer  string
		itemKey []string
	)

	cmd := &cobra.Command{
		Use:   "menu <label>...",
		Short: "Show a keyed menu and print the chosen label",
		Long: `Shows one option per label and prints the label of the option chosen.
Keys are assigned automatically unless given with --key, in label order.
Pressing the quit key exits with status 130.

Example:
  keymacro menu build test deploy --header "Run what?"
  keymacro menu yes no --key y --key n`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := make([]menu.Thunk, len(args))
			for i, label := range args {
				actions[i] = func() (any, error) { return label, nil }
			}
			items, err := menu.FromLists(args, actions, itemKey)
			if err != nil {
				return err
			}

			opts := []menu.Option{
				menu.WithQuitKey(c.cfg.Menu.QuitKey),
				menu.WithFirstKey(c.cfg.FirstKeyRune()),
				menu.WithHeader(header),
				menu.WithFooter(footer),
				menu.WithLogger(c.logger),
			}
			m, err := menu.New(items, opts...)
			if err != nil {
				return err
			}

			reader, release, err := c.reader(keys)
			if err != nil {
				return err
			}
			defer release()

			v, err := m.Run(cmd.Context(), reader)
			// The screen must be closed before printing the result.
			release()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, v)
			return nil
		},
	}

	cmd.Flags().StringVar(&keys, "keys", "", "Replay these key specs instead of reading the terminal")
	cmd.Flags().StringVar(&header, "header", "", "Text shown above the options")
	cmd.Flags().StringVar(&footer, "footer", "", "Text shown below the options")
	cmd.Flags().StringArrayVar(&itemKey, "key", nil, "Key for the next label (repeatable)")
	return cmd
}
