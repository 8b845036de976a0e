package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/keymacro/internal/plugin/lua"
)

func (c *cli) runCmd() *cobra.Command {
	var keys string

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Run a Lua macro script",
		Long: `Runs a Lua script with the keymacro module available through
require("keymacro"). Values returned by the script are printed one per line.

Example:
  keymacro run pick.lua
  keymacro run pick.lua --keys "1 y"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := c.cfg.LuaTimeout()
			if err != nil {
				return err
			}

			reader, release, err := c.reader(keys)
			if err != nil {
				return err
			}
			defer release()

			state, err := lua.NewState(
				lua.WithExecutionTimeout(timeout),
				lua.WithOutput(c.stdout),
				lua.WithLogger(c.logger),
			)
			if err != nil {
				return err
			}
			defer state.Close()

			lua.OpenMacros(state, reader, lua.MacroOptions{
				QuitKey:  c.cfg.Menu.QuitKey,
				FirstKey: c.cfg.FirstKeyRune(),
				Logger:   c.logger,
			})

			c.logger.Debug("running script", zap.String("path", args[0]))
			results, err := state.DoFile(cmd.Context(), args[0])
			release()
			if err != nil {
				return err
			}

			bridge := lua.NewBridge(state.LuaState())
			for _, v := range results {
				fmt.Fprintln(c.stdout, bridge.Format(v))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keys, "keys", "", "Replay these key specs instead of reading the terminal")
	return cmd
}
