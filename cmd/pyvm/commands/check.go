package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyvm/internal/errors"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the installed Python with the latest release",
	Long: `Probe the configured interpreter, fetch the latest stable release from
python.org and report whether an update is available. Nothing is installed.

Exit codes:
  0 - up to date
  1 - update available, or the check failed`,
	Example: `  pyvm check

  # Check another interpreter
  PYVM_PYTHON_COMMAND=/opt/python/bin/python3 pyvm check

See Also: pyvm update`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(c *cobra.Command, _ []string) error {
	svc := newServices(c)
	report, err := svc.orchestrator(c).Check(c.Context())
	if err != nil {
		return err
	}
	if report.Plan.NeedsUpdate() {
		// The report already says so; only the exit code is left.
		return errors.NewExitError(nil, errors.ExitFailure)
	}
	return nil
}
