// Package commands implements the CLI commands for mcpsync.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/cmd"
	"github.com/neilforest7/mcp-coordinator/internal/backup"
	"github.com/neilforest7/mcp-coordinator/internal/config"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/logging"
)

// DebugEnv raises verbosity when no -v flag is given: 1 or true is -vv,
// 2 is -vvv.
const DebugEnv = "MCPSYNC_DEBUG"

var (
	// configFile holds the value of the --config flag.
	configFile string

	// claudeConfig and opencodeConfig override the store file locations.
	claudeConfig   string
	opencodeConfig string

	// machineFlag scopes baselines to a machine.
	machineFlag string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the value of the -q/--quiet flag.
	quiet bool

	// logFormat holds the value of the --log-format flag.
	logFormat string

	// logFile holds the path to the log file.
	logFile string
)

var (
	// loadedConfig is the configuration read by initConfig.
	loadedConfig *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or <config dir>/mcpsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&claudeConfig, "claude-config", "",
		"path to claude_desktop_config.json")
	rootCmd.PersistentFlags().StringVar(&opencodeConfig, "opencode-config", "",
		"path to opencode.json")
	rootCmd.PersistentFlags().StringVar(&machineFlag, "machine", "",
		`machine scope for sync baselines, "remote:ID" for a remote host (default "local")`)
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	backup.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpsync version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "mcpsync",
	Short: "Keep MCP server definitions in sync between Claude Desktop and OpenCode",
	Long: `mcpsync reconciles the MCP server entries of Claude Desktop
(claude_desktop_config.json) and OpenCode (opencode.json).

It reads both files, classifies every server name as in sync, created,
updated, deleted, or conflicting relative to the last sync, and applies the
changes you select back into each file in its own format. Everything else in
the files is left untouched, and each file is backed up before it is written.`,
	Example: `  # Show what differs
  mcpsync plan

  # Inspect one conflict
  mcpsync diff github

  # Apply everything that is not a conflict
  mcpsync apply

  # Resolve a conflict by keeping OpenCode's version
  mcpsync apply github --keep github=opencode`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// logLevel resolves the -q and -v flags and DebugEnv into a level. Flags
// win over the environment.
func logLevel(quiet bool, verbosity int) (slog.Level, error) {
	if quiet && verbosity > 0 {
		return 0, errors.NewUserError(errors.New("cannot use --quiet and --verbose together"),
			"Pass either -q or -v")
	}
	if quiet {
		return slog.LevelError, nil
	}
	if verbosity == 0 {
		switch strings.ToLower(os.Getenv(DebugEnv)) {
		case "1", "true":
			verbosity = 2
		case "2":
			verbosity = 3
		}
	}
	return logging.LevelFromVerbosity(verbosity), nil
}

// setupLogging installs the logger selected by the global flags as the slog
// default and in the command context.
func setupLogging(cmd *cobra.Command) error {
	level, err := logLevel(quiet, verbosity)
	if err != nil {
		return err
	}

	cfg := logging.Config{
		Level:  level,
		Format: logging.ParseFormat(logFormat),
		Output: cmd.ErrOrStderr(),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		cfg.File = f
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
