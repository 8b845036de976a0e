package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/keymacro/internal/config"
	"github.com/dshills/keymacro/internal/logging"
	"github.com/dshills/keymacro/internal/macro"
	"github.com/dshills/keymacro/internal/prompt"
)

// cli holds the streams and per-invocation state shared by commands.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// newScreen opens the terminal for the tcell backend.
	newScreen func() (tcell.Screen, error)

	configPath string
	logLevel   string
	logFile    string

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		newScreen: tcell.NewScreen,
		logger:    zap.NewNop(),
	}
}

// execute runs the command line and returns the process exit code.
func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if c.closeLog != nil {
		_ = c.closeLog()
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, macro.ErrCancelled):
		fmt.Fprintln(c.stderr, "Cancelled")
		return exitCancelled
	default:
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return exitError
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keymacro",
		Short: "Keyed menus and list helpers for editor macros",
		Long: `keymacro runs editor macros written in Lua and exposes its helpers
on the command line.

Available commands:
  run      - Run a Lua macro script
  menu     - Show a keyed menu and print the chosen label
  range    - Print an inclusive range of integers
  subset   - Print the items at the given indices
  config   - Print the effective configuration
  version  - Print version information`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "Write JSON logs to a rotated file")

	root.AddCommand(
		c.runCmd(),
		c.menuCmd(),
		c.rangeCmd(),
		c.subsetCmd(),
		c.configCmd(),
		c.versionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFile != "" {
		cfg.Log.File = c.logFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	lc := cfg.Logging()
	if lc.File == "" {
		lc.Output = c.stderr
	}
	logger, closeFn, err := logging.New(lc)
	if err != nil {
		return err
	}
	c.logger = logger.With(zap.String("cmd", cmd.Name()))
	c.closeLog = closeFn
	return nil
}

// reader returns the key reader for a command: scripted keys when given,
// otherwise the configured backend. The returned function releases it.
func (c *cli) reader(keys string) (prompt.Reader, func(), error) {
	if keys != "" {
		script, err := prompt.ParseScript(keys)
		if err != nil {
			return nil, nil, err
		}
		return script, func() {}, nil
	}

	switch c.cfg.Prompt.Backend {
	case config.BackendLine:
		return prompt.NewLine(c.stdin, c.stderr, c.cfg.Prompt.Color), func() {}, nil
	default:
		ts, err := c.newScreen()
		if err != nil {
			return nil, nil, fmt.Errorf("opening terminal: %w", err)
		}
		screen := prompt.NewScreenWith(ts)
		if err := screen.Init(); err != nil {
			return nil, nil, fmt.Errorf("opening terminal: %w", err)
		}
		return screen, screen.Close, nil
	}
}
