package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyvm/internal/doctor"
	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

var infoFormat string

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "text",
		"output format: text, json, yaml, toml")
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show platform and interpreter details",
	Long: `Show what pyvm sees on this machine: operating system, architecture,
the probed interpreter and its path, whether pyvm runs with administrator
rights and which package manager update would use.

Nothing is changed. Problems are reported with hints, and the command
always exits 0.`,
	Example: `  pyvm info

  # Machine-readable output
  pyvm info --format json

See Also: pyvm check, pyvm config`,
	Args:    cobra.NoArgs,
	PreRunE: validateInfoFormat,
	RunE:    runInfo,
}

func validateInfoFormat(_ *cobra.Command, _ []string) error {
	switch infoFormat {
	case "text", "json", "yaml", "toml":
		return nil
	}
	return errors.NewUserError(
		errors.Newf("invalid format %q", infoFormat),
		"Use --format text, json, yaml or toml",
	)
}

func runInfo(c *cobra.Command, _ []string) error {
	svc := newServices(c)
	profile := svc.detector.Detect()

	runner := doctor.NewRunner()
	for _, check := range doctor.DefaultChecks(profile, svc.prober, cfg.Python.EffectiveDefaultCommand(), svc.runner.LookPath) {
		runner.AddCheck(check)
	}
	report := runner.Run(c.Context())
	if err := c.Context().Err(); err != nil {
		return errors.Wrap(err, "info interrupted")
	}

	return writeInfo(c.OutOrStdout(), report, infoFormat)
}

func writeInfo(w io.Writer, report *doctor.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case "toml":
		return errors.Wrap(toml.NewEncoder(w).Encode(report), "encoding TOML")
	default:
		writeInfoText(w, report)
		return nil
	}
}

func writeInfoText(w io.Writer, report *doctor.Report) {
	facts := []struct{ label, check, key string }{
		{"OS", "system", "os"},
		{"Arch", "system", "arch"},
		{"Platform", "system", "platform"},
		{"Admin", "privileges", "is_admin"},
		{"Python", "runtime", "version"},
		{"Path", "runtime", "path"},
		{"Default path", "runtime", "default_path"},
	}
	for _, f := range facts {
		res := report.Result(f.check)
		if res == nil {
			continue
		}
		v, ok := res.Details[f.key]
		if !ok {
			continue
		}
		if b, isBool := v.(bool); isBool {
			v = yesNo(b)
		}
		fmt.Fprintf(w, "%-13s %v\n", f.label+":", v)
	}
	fmt.Fprintln(w)

	colored := logging.SupportsColor(w)
	for _, result := range report.Results {
		fmt.Fprintf(w, "%s %-16s %s\n", statusIcon(result.Status, colored), result.Name, result.Message)
		if result.Hint != "" && result.Status >= doctor.SeverityInfo {
			fmt.Fprintf(w, "  hint: %s\n", result.Hint)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func statusIcon(s doctor.Severity, colored bool) string {
	var icon string
	var c *color.Color
	switch s {
	case doctor.SeverityPass:
		icon, c = "✓", color.New(color.FgGreen)
	case doctor.SeverityInfo:
		icon, c = "ℹ", color.New(color.FgCyan)
	case doctor.SeverityWarning:
		icon, c = "⚠", color.New(color.FgYellow)
	case doctor.SeverityError:
		icon, c = "✗", color.New(color.FgRed, color.Bold)
	default:
		return "?"
	}
	if !colored {
		return icon
	}
	c.EnableColor()
	return c.Sprint(icon)
}
