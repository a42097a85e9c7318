// Package doctor runs the read-only diagnostics behind `pyvm info`.
package doctor

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a condition that will stop some commands,
	// such as update, from completing.
	SeverityWarning

	// SeverityError indicates pyvm cannot work on this host as configured.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in every report format.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	// Name is the identifier for this check.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Category groups related checks (system, runtime, privileges, packages).
	Category string `json:"category" yaml:"category" toml:"category"`

	Status  Severity `json:"status" yaml:"status" toml:"status"`
	Message string   `json:"message" yaml:"message" toml:"message"`

	// Details carries the raw facts behind Message. Keys depend on the check.
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`

	// Hint tells the user how to resolve a warning or error.
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty" toml:"hint,omitempty"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed" yaml:"passed" toml:"passed"`
	Info     int `json:"info" yaml:"info" toml:"info"`
	Warnings int `json:"warnings" yaml:"warnings" toml:"warnings"`
	Errors   int `json:"errors" yaml:"errors" toml:"errors"`
}
