package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keymacro/internal/macro/seq"
)

func (c *cli) rangeCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "range <start> [end]",
		Short: "Print an inclusive range of integers",
		Long: `Prints the integers from start to end inclusive, one per line.
With --length instead of end, prints that many integers from start.
When both are given end wins. An end below start prints nothing.

Example:
  keymacro range 1 5
  keymacro range 10 --length 3`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[0], err)
			}

			var opts []seq.RangeOption
			if len(args) == 2 {
				end, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid end %q: %w", args[1], err)
				}
				opts = append(opts, seq.To(end))
			}
			if cmd.Flags().Changed("length") {
				opts = append(opts, seq.Length(length))
			}

			nums, err := seq.Range(start, opts...)
			if err != nil {
				return err
			}
			for _, n := range nums {
				fmt.Fprintln(c.stdout, n)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "n", 0, "Number of integers to print")
	return cmd
}

func (c *cli) subsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subset <i,j,...> <item>...",
		Short: "Print the items at the given indices",
		Long: `Prints item[i] for each comma-separated index, in the order given.
Indices start at 0 and may repeat.

Example:
  keymacro subset 2,0,2 a b c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndices(args[0])
			if err != nil {
				return err
			}
			items, err := seq.Subset(indices, args[1:])
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintln(c.stdout, item)
			}
			return nil
		},
	}
}

// parseIndices parses "2,0,2". An empty string is no indices.
func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	indices := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", p, err)
		}
		indices[i] = n
	}
	return indices, nil
}
