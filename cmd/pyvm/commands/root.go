// Package commands implements the CLI commands for pyvm.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyvm/cmd"
	"github.com/thoreinstein/pyvm/internal/config"
	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// cfg is the configuration loaded before every command. It is non-nil
// even when loading failed, so config subcommands can repair the file.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error log output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: $XDG_CONFIG_HOME/pyvm/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("pyvm version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
	if cfg == nil {
		cfg = config.Defaults()
	}
}

var rootCmd = &cobra.Command{
	Use:   "pyvm",
	Short: "Keep Python current without touching your default interpreter",
	Long: `pyvm checks python.org for the latest stable Python release, compares it
with the interpreter on this machine and installs newer versions side by
side. The interpreter that "python3" runs only changes when you ask for it
with set-default.

Run without a subcommand, pyvm performs "pyvm check".`,
	Example: `  # Compare the installed interpreter with the latest release
  pyvm

  # Install the latest release next to the current one
  pyvm update

  # Make an installed version the default python3 (Linux)
  pyvm set-default 3.13

  See Also: pyvm info, pyvm config`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	RunE: runCheck,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(
			errors.New("--quiet and --verbose cannot be used together"),
			"Pass only one of them",
		)
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("PYVM_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	var primary slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primary = logging.New(logging.Config{Level: level, Format: logging.FormatJSON, Output: cmd.ErrOrStderr()}).Handler()
	case logging.FormatText:
		primary = logging.NewHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	default:
		return errors.NewUserError(
			errors.Newf("invalid log format %q", logFormat),
			"Use --log-format text or --log-format json",
		)
	}

	handlers := []slog.Handler{primary}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "Check the --log-file path")
		}
		// File output uses JSON format
		handlers = append(handlers, logging.New(logging.Config{Level: level, Format: logging.FormatJSON, Output: f}).Handler())
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports a broken configuration for every command that
// depends on it. Commands that inspect or repair the file still run.
func checkConfig(cmd *cobra.Command) error {
	if configLoadErr == nil {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "config", "gen-doc", "info":
			logging.FromContext(cmd.Context()).Warn("configuration problem", "error", configLoadErr)
			return nil
		}
	}
	return errors.NewConfigError(configLoadErr)
}

// Execute runs the root command with ctx, which is cancelled on Ctrl+C.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
