package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilforest7/mcp-coordinator/internal/config"
	"github.com/neilforest7/mcp-coordinator/internal/editor"
	"github.com/neilforest7/mcp-coordinator/internal/errors"
	"github.com/neilforest7/mcp-coordinator/internal/paths"
	"github.com/neilforest7/mcp-coordinator/pkg/fileutil"
)

var (
	configShowFormat string
	configInitForce  bool
)

// openEditor is replaced in tests.
var openEditor = editor.Open

func init() {
	configShowCmd.Flags().StringVar(&configShowFormat, "format", formatYAML, "output format: yaml, json, toml")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpsync configuration",
	Long: `Manage the mcpsync config file, <config dir>/mcpsync/config.yaml by default.

Every key can also be set from the environment, e.g.
MCPSYNC_STORES_CLAUDE_PATH or MCPSYNC_BACKUP_RETENTION.`,
	Example: `  # Show the effective configuration
  mcpsync config show

  # Create a config file with defaults
  mcpsync config init

  # Edit it
  EDITOR=nano mcpsync config edit`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := config.Path()
		if p == "" {
			p = defaultConfigFile()
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor. Uses $EDITOR, then $VISUAL, then nano
or vi. The file is validated after the editor exits.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

// defaultConfigFile is where init writes and edit looks when no file was
// loaded.
func defaultConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configShowFormat == formatText || !validFormat(configShowFormat) {
		return errors.NewUserError(errors.Newf("unknown format %q", configShowFormat), "Use yaml, json or toml")
	}
	cfg := loadedConfig
	if cfg == nil {
		cfg = config.Default()
	}
	return encode(cmd.OutOrStdout(), configShowFormat, cfg)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := defaultConfigFile()
	if _, err := os.Stat(path); err == nil && !configInitForce {
		return errors.NewUserError(errors.Newf("config file already exists at %s", path), "Pass --force to overwrite it")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, config.Default()); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := config.Path()
	if path == "" {
		path = defaultConfigFile()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewUserError(errors.Newf("config file not found at %s", path), "Run 'mcpsync config init' to create it")
	}

	if err := openEditor(cmd.Context(), path, cmd.OutOrStdout()); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	return nil
}
