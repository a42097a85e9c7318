package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyvm/internal/cli/prompt"
)

var (
	setDefaultAuto bool
	setDefaultPick bool
)

func init() {
	setDefaultCmd.Flags().BoolVar(&setDefaultAuto, "auto", false,
		"change the default without asking for confirmation")
	setDefaultCmd.Flags().BoolVar(&setDefaultPick, "pick", false,
		"choose the version interactively")
	rootCmd.AddCommand(setDefaultCmd)
}

var setDefaultCmd = &cobra.Command{
	Use:   "set-default [X.Y]",
	Short: "Choose which installed Python python3 runs",
	Long: `Without arguments, list the versioned interpreters (python3.12, python3.13,
...) found on PATH and mark the current default.

With a version, repoint python3 to that interpreter through the system
alternatives mechanism (update-alternatives on Debian and Ubuntu,
alternatives on Fedora and RHEL). Other platforms are not supported.

Changing the default affects every script that runs python3, so pyvm asks
before doing it unless --auto is given.`,
	Example: `  # List installed versions
  pyvm set-default

  # Make Python 3.13 the default
  pyvm set-default 3.13

  # Pick from the installed versions
  pyvm set-default --pick

See Also: pyvm update --set-default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetDefault,
}

func runSetDefault(c *cobra.Command, args []string) error {
	svc := newServices(c)
	o := svc.orchestrator(c)

	switch {
	case len(args) == 1:
		return o.SetDefault(c.Context(), args[0], setDefaultAuto)
	case setDefaultPick:
		installed, err := o.List(c.Context())
		if err != nil {
			return err
		}
		rt, err := prompt.PickRuntime(installed, newFinder)
		if err != nil {
			return err
		}
		return o.SetDefault(c.Context(), rt.Version.String(), setDefaultAuto)
	default:
		_, err := o.List(c.Context())
		return err
	}
}
