package update

import (
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

// Action is what a Plan recommends.
type Action int

const (
	// UpToDate means the current interpreter is at or past the latest
	// stable release.
	UpToDate Action = iota
	// UpdateAvailable means a newer stable release exists.
	UpdateAvailable
	// UpdateRequired means a newer release exists and the current
	// interpreter is below the configured minimum.
	UpdateRequired
)

func (a Action) String() string {
	switch a {
	case UpToDate:
		return "upToDate"
	case UpdateAvailable:
		return "updateAvailable"
	case UpdateRequired:
		return "updateRequired"
	default:
		return "unknown"
	}
}

// Label is the human form used in reports.
func (a Action) Label() string {
	switch a {
	case UpdateAvailable:
		return "update available"
	case UpdateRequired:
		return "update required"
	default:
		return "up to date"
	}
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Plan is the outcome of comparing the current interpreter with the
// latest release. Target is nil when there is nothing to install.
type Plan struct {
	Action  Action             `json:"action" yaml:"action" toml:"action"`
	Current version.Semantic   `json:"current" yaml:"current" toml:"current"`
	Latest  version.Semantic   `json:"latest" yaml:"latest" toml:"latest"`
	Target  *release.Candidate `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
}

// NeedsUpdate reports whether the plan has a target.
func (p Plan) NeedsUpdate() bool {
	return p.Action != UpToDate
}

// Decide compares current with latest. Equal or newer is UpToDate;
// older is UpdateAvailable with latest as the target.
func Decide(current version.Semantic, latest release.Candidate) Plan {
	plan := Plan{Action: UpToDate, Current: current, Latest: latest.Version}
	if current.Compare(latest.Version) == version.Less {
		target := latest
		plan.Action = UpdateAvailable
		plan.Target = &target
	}
	return plan
}

// Policy adjusts plans. The zero Policy changes nothing.
type Policy struct {
	// Minimum marks interpreters below it as requiring an update.
	Minimum version.Semantic
}

// Decide applies Decide and escalates UpdateAvailable to UpdateRequired
// when current is below the minimum.
func (p Policy) Decide(current version.Semantic, latest release.Candidate) Plan {
	plan := Decide(current, latest)
	if plan.Action == UpdateAvailable && !p.Minimum.IsZero() && current.Less(p.Minimum) {
		plan.Action = UpdateRequired
	}
	return plan
}
