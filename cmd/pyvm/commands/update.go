package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyvm/internal/update"
)

var (
	updateAuto       bool
	updateSetDefault bool
	updateVersion    string
)

func init() {
	updateCmd.Flags().BoolVar(&updateAuto, "auto", false,
		"install without asking for confirmation")
	updateCmd.Flags().BoolVar(&updateSetDefault, "set-default", false,
		"make the new version the default python3 after installing (Linux)")
	updateCmd.Flags().StringVar(&updateVersion, "version", "",
		"install this exact X.Y.Z release instead of the latest")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Install the latest Python side by side",
	Long: `Install the latest stable Python next to the current interpreter.

The install uses the platform's native mechanism: apt with the deadsnakes
repository on Debian and Ubuntu, dnf on Fedora and RHEL, Homebrew on macOS
and the official installer on Windows. The interpreter that "python3" runs
is left alone unless --set-default is given.

Exit codes:
  0   - installed, or already up to date
  1   - the update failed or needs a manual step
  130 - cancelled`,
	Example: `  # Install the latest release, asking first
  pyvm update

  # Unattended install of a specific release
  pyvm update --auto --version 3.13.1

  # Install and switch python3 to it
  pyvm update --set-default

See Also: pyvm check, pyvm set-default`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func runUpdate(c *cobra.Command, _ []string) error {
	svc := newServices(c)
	res, err := svc.orchestrator(c).Update(c.Context(), update.UpdateOptions{
		Auto:       updateAuto,
		SetDefault: updateSetDefault,
		Version:    updateVersion,
	})
	svc.logger.Debug("update finished", "state", res.State.String(), "error_kind", res.Outcome.ErrorKind)
	return err
}
