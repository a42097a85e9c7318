package doctor

import (
	"context"
	"fmt"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/platform"
	"github.com/thoreinstein/pyvm/internal/probe"
)

// Check categories.
const (
	CategorySystem     = "system"
	CategoryRuntime    = "runtime"
	CategoryPrivileges = "privileges"
	CategoryPackages   = "packages"
)

// SystemCheck reports the host profile.
type SystemCheck struct {
	Profile platform.Profile
}

// NewSystemCheck creates a check describing profile.
func NewSystemCheck(profile platform.Profile) *SystemCheck {
	return &SystemCheck{Profile: profile}
}

func (c *SystemCheck) Name() string     { return "system" }
func (c *SystemCheck) Category() string { return CategorySystem }

func (c *SystemCheck) Run(context.Context) *CheckResult {
	p := c.Profile
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  fmt.Sprintf("%s, %s family", p, p.Family),
		Details: map[string]any{
			"os":       p.OS,
			"arch":     p.Arch,
			"family":   string(p.Family),
			"platform": p.String(),
		},
	}
	if p.Distro != "" {
		result.Details["distro"] = p.Distro
		result.Details["distro_version"] = p.DistroVersion
	}

	if p.Family == platform.Unknown {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%s is not a supported platform", p)
		result.Hint = "update supports Debian-like and Fedora-like Linux, macOS and Windows; install new versions manually"
	}
	return result
}

// RuntimeProber is the part of [probe.Prober] the runtime check uses.
type RuntimeProber interface {
	Probe(ctx context.Context) (probe.Runtime, error)
	DefaultPath() (string, error)
}

// RuntimeCheck probes the configured interpreter and reports where the
// default command resolves when that is a different executable.
type RuntimeCheck struct {
	Prober         RuntimeProber
	DefaultCommand string
}

// NewRuntimeCheck creates a runtime check. defaultCommand names the command
// whose resolution counts as the default interpreter.
func NewRuntimeCheck(prober RuntimeProber, defaultCommand string) *RuntimeCheck {
	return &RuntimeCheck{Prober: prober, DefaultCommand: defaultCommand}
}

func (c *RuntimeCheck) Name() string     { return "runtime" }
func (c *RuntimeCheck) Category() string { return CategoryRuntime }

func (c *RuntimeCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	rt, err := c.Prober.Probe(ctx)
	if err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		result.Hint = "Install Python or point python.command at an interpreter: pyvm config set python.command <path>"
		if errors.IsCancelled(err) {
			result.Hint = ""
		}
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("Python %s at %s", rt.Version, rt.ExecutablePath)
	result.Details = map[string]any{
		"version":    rt.Version.String(),
		"path":       rt.ExecutablePath,
		"command":    rt.Command,
		"is_default": rt.IsDefault,
	}

	def, err := c.Prober.DefaultPath()
	switch {
	case err != nil:
		result.Status = SeverityInfo
		result.Message += fmt.Sprintf("; %s is not on PATH", c.DefaultCommand)
	case !rt.IsDefault:
		result.Status = SeverityInfo
		result.Details["default_path"] = def
		result.Message += fmt.Sprintf("; %s runs %s", c.DefaultCommand, def)
	}
	return result
}

// PrivilegeCheck reports whether installs can obtain the privileges they
// need.
type PrivilegeCheck struct {
	Profile  platform.Profile
	LookPath func(string) (string, error)
}

// NewPrivilegeCheck creates a privilege check. lookPath is used to find
// sudo on Linux.
func NewPrivilegeCheck(profile platform.Profile, lookPath func(string) (string, error)) *PrivilegeCheck {
	return &PrivilegeCheck{Profile: profile, LookPath: lookPath}
}

func (c *PrivilegeCheck) Name() string     { return "privileges" }
func (c *PrivilegeCheck) Category() string { return CategoryPrivileges }

func (c *PrivilegeCheck) Run(context.Context) *CheckResult {
	p := c.Profile
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  map[string]any{"is_admin": p.IsAdmin},
	}

	if p.IsAdmin {
		result.Message = "running as administrator"
		return result
	}

	switch p.Family {
	case platform.DebianLike, platform.FedoraLike:
		if c.LookPath != nil {
			if path, err := c.LookPath("sudo"); err == nil {
				result.Details["sudo"] = path
				result.Message = "not root; package steps run through sudo"
				return result
			}
		}
		result.Status = SeverityWarning
		result.Message = "not root and sudo is not available"
		result.Hint = "Run pyvm update as root, or install sudo"
	case platform.Windows:
		result.Status = SeverityInfo
		result.Message = "not elevated; the installer asks for elevation when it needs it"
	default:
		result.Message = "running as a regular user"
	}
	return result
}

// PackageManagerCheck reports the package manager update would drive.
type PackageManagerCheck struct {
	Profile platform.Profile
}

// NewPackageManagerCheck creates a package manager check for profile.
func NewPackageManagerCheck(profile platform.Profile) *PackageManagerCheck {
	return &PackageManagerCheck{Profile: profile}
}

func (c *PackageManagerCheck) Name() string     { return "package-manager" }
func (c *PackageManagerCheck) Category() string { return CategoryPackages }

func (c *PackageManagerCheck) Run(context.Context) *CheckResult {
	p := c.Profile
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
	}
	if p.PackageManager != "" {
		result.Details = map[string]any{"package_manager": p.PackageManager}
	}

	switch p.Family {
	case platform.Windows:
		result.Message = "official python.org installer"
	case platform.DebianLike, platform.FedoraLike:
		if p.PackageManager == "" {
			result.Status = SeverityError
			result.Message = fmt.Sprintf("no %s package manager found on PATH", p.Family)
			result.Hint = "update installs through apt-get on Debian-like systems and dnf or yum on Fedora-like systems"
			return result
		}
		result.Message = p.PackageManager
	case platform.MacOS:
		if p.PackageManager == "" {
			result.Status = SeverityInfo
			result.Message = "Homebrew not found; update links to the python.org installer"
			result.Hint = "Install Homebrew from https://brew.sh to let update install automatically"
			return result
		}
		result.Message = p.PackageManager
	default:
		result.Status = SeverityWarning
		result.Message = "no supported package manager"
		result.Hint = "Download Python from https://www.python.org/downloads/"
	}
	return result
}

// DefaultChecks returns the checks `pyvm info` runs, in display order.
func DefaultChecks(profile platform.Profile, prober RuntimeProber, defaultCommand string, lookPath func(string) (string, error)) []Check {
	return []Check{
		NewSystemCheck(profile),
		NewRuntimeCheck(prober, defaultCommand),
		NewPrivilegeCheck(profile, lookPath),
		NewPackageManagerCheck(profile),
	}
}
