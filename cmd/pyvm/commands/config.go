package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyvm/internal/config"
	"github.com/thoreinstein/pyvm/internal/editor"
	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pyvm configuration",
	Long: `Manage pyvm configuration stored in $XDG_CONFIG_HOME/pyvm/config.yaml.

Every key can also be set through the environment: release.timeout is read
from PYVM_RELEASE_TIMEOUT.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  pyvm config

  # Get a specific value
  pyvm config get python.command

  # Set a value
  pyvm config set release.timeout 30s

See Also: pyvm info`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get the effective value of a single configuration key, in dot notation.`,
	Example: `  pyvm config get release.index_url

See Also: pyvm config set, pyvm config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

The value is checked before it is written: durations take a unit (30s, 2m),
URLs must be http or https and policy.minimum_version must be a version.`,
	Example: `  # Probe a different interpreter
  pyvm config set python.command python3.12

  # Run the Windows installer without its UI
  pyvm config set windows.unattended true

See Also: pyvm config get, pyvm config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration in YAML format.`,
	Example: `  pyvm config list

See Also: pyvm config get, pyvm config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your editor.

Uses $EDITOR, then $VISUAL, then nano or vi. A missing file is created
with the default settings first.`,
	Example: `  # Open config in default editor
  pyvm config edit

  # Open with specific editor
  EDITOR=nano pyvm config edit

See Also: pyvm config list`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigGet(c *cobra.Command, args []string) error {
	key := args[0]
	if !config.ValidKey(key) {
		return errors.NewUserError(
			errors.Newf("unknown config key %q", key),
			"Run: pyvm config list",
		)
	}
	fmt.Fprintln(c.OutOrStdout(), config.String(config.Settings()[key]))
	return nil
}

func runConfigSet(c *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := config.FileUsed()

	if err := config.Set(path, key, value); err != nil {
		if errors.Is(err, errors.ErrInvalidConfig) {
			return errors.NewUserError(err, "Run: pyvm config list")
		}
		return err
	}
	logging.FromContext(c.Context()).Info("config updated", "file", path, "key", key)
	fmt.Fprintf(c.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigList(c *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(config.Nested())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	w := c.OutOrStdout()
	fmt.Fprintf(w, "# %s\n", config.FileUsed())
	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(c *cobra.Command, _ []string) error {
	path := config.FileUsed()

	created, err := config.WriteDefaults(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(c.OutOrStdout(), "Created %s\n", path)
	}

	logger := logging.FromContext(c.Context())
	return editor.Open(c.Context(), newRunner(logger), path)
}
