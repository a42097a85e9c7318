package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

// Family identifies an operating system family with its own install
// protocol.
type Family string

const (
	Windows    Family = "windows"
	DebianLike Family = "debian"
	FedoraLike Family = "fedora"
	MacOS      Family = "macos"
	Unknown    Family = "unknown"
)

// Families returns all families in display order.
func Families() []Family {
	return []Family{Windows, DebianLike, FedoraLike, MacOS, Unknown}
}

// CanSetDefault reports whether the family has an alternatives mechanism
// SetDefault can drive.
func CanSetDefault(f Family) bool {
	return f == DebianLike || f == FedoraLike
}

// Profile describes the host. It is computed once per run by a [Detector].
type Profile struct {
	Family Family `json:"family" yaml:"family" toml:"family"`
	OS     string `json:"os" yaml:"os" toml:"os"`
	Arch   string `json:"arch" yaml:"arch" toml:"arch"`

	// Distro and DistroVersion come from os-release on Linux.
	Distro        string `json:"distro,omitempty" yaml:"distro,omitempty" toml:"distro,omitempty"`
	DistroVersion string `json:"distro_version,omitempty" yaml:"distro_version,omitempty" toml:"distro_version,omitempty"`

	IsAdmin bool `json:"is_admin" yaml:"is_admin" toml:"is_admin"`

	// PackageManager is the executable name of the detected package
	// manager (apt-get, dnf, yum, brew), or empty.
	PackageManager string `json:"package_manager,omitempty" yaml:"package_manager,omitempty" toml:"package_manager,omitempty"`
}

// String renders the platform as "linux/amd64 (ubuntu 24.04)".
func (p Profile) String() string {
	s := p.OS + "/" + p.Arch
	if p.Distro != "" {
		s += " (" + strings.TrimSpace(p.Distro+" "+p.DistroVersion) + ")"
	}
	return s
}

// Strategy drives the install protocol of one family.
//
// Install must never repoint what the bare interpreter command resolves to;
// only SetDefault may do that, and only when a user asked for it.
type Strategy interface {
	Family() Family
	// Install installs target side by side with any existing interpreter.
	// The returned outcome carries the path of the new interpreter.
	Install(ctx context.Context, target release.Candidate, profile Profile) (Outcome, error)
	// VerifyInstalled runs the interpreter at path and checks that it
	// reports exactly want.
	VerifyInstalled(ctx context.Context, path string, want version.Semantic) error
	// SetDefault repoints the default interpreter to path.
	SetDefault(ctx context.Context, path string, v version.Semantic, profile Profile) error
}

// Outcome is the terminal record of an install attempt.
type Outcome struct {
	Succeeded     bool   `json:"succeeded" yaml:"succeeded" toml:"succeeded"`
	InstalledPath string `json:"installed_path,omitempty" yaml:"installed_path,omitempty" toml:"installed_path,omitempty"`
	// Command is how to invoke the new interpreter, e.g. "python3.13" or
	// "py -3.13".
	Command       string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	BecameDefault bool   `json:"became_default" yaml:"became_default" toml:"became_default"`
	ErrorKind     string `json:"error_kind,omitempty" yaml:"error_kind,omitempty" toml:"error_kind,omitempty"`
}

// Failed returns an outcome recording err.
func Failed(err error) Outcome {
	return Outcome{ErrorKind: errors.Kind(err)}
}

// ManualStepError is a guided stop: the install cannot continue without
// the user, and Steps say what to do.
type ManualStepError struct {
	Reason string
	URL    string
	Steps  []string
}

func (e *ManualStepError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("manual step required: %s; download %s", e.Reason, e.URL)
	}
	return "manual step required: " + e.Reason
}

func (e *ManualStepError) Unwrap() error {
	return errors.ErrManualStepRequired
}

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Options carries configuration shared by the strategies.
type Options struct {
	// FTPURL is the base of the python.org artifact tree.
	FTPURL string
	// DownloadDir receives installer downloads.
	DownloadDir string
	// DebianRepository is the apt repository providing versioned
	// interpreters. Empty skips repository setup.
	DebianRepository string
	// AptSourcesDir is scanned to decide whether the repository is present.
	AptSourcesDir string
	// Unattended runs the Windows installer quietly.
	Unattended bool
}

// DefaultFTPURL is the python.org artifact tree.
const DefaultFTPURL = "https://www.python.org/ftp/python/"

// Deps are the collaborators a strategy needs.
type Deps struct {
	Runner  process.Runner
	Fetcher Fetcher
	Options Options
	// Out receives user-facing progress lines.
	Out    io.Writer
	Logger *slog.Logger
}

func (d Deps) say(format string, args ...any) {
	if d.Out != nil {
		fmt.Fprintf(d.Out, format+"\n", args...)
	}
}
