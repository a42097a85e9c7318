package platform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

// installerCancelled is the exit status of a Windows installer whose user
// pressed Cancel (ERROR_INSTALL_USEREXIT).
const installerCancelled = 1602

// unattendedArgs install for the current user only and leave PATH and file
// associations alone, so "python" keeps resolving where it did.
var unattendedArgs = []string{
	"/quiet",
	"InstallAllUsers=0",
	"PrependPath=0",
	"AssociateFiles=0",
	"Include_launcher=1",
}

type windowsStrategy struct {
	verifier
	deps Deps
}

func newWindows(d Deps) Strategy {
	return &windowsStrategy{verifier: verifier{d.Runner}, deps: d}
}

func (s *windowsStrategy) Family() Family { return Windows }

// Install downloads the official installer and runs it. The installer is
// interactive unless Options.Unattended is set. The new interpreter is
// located through the py launcher, whose default selection is untouched.
func (s *windowsStrategy) Install(ctx context.Context, target release.Candidate, profile Profile) (Outcome, error) {
	v := target.Version
	url := WindowsInstallerURL(s.deps.Options.FTPURL, v, profile.Arch)

	dir := s.deps.Options.DownloadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		err = errors.Wrapf(err, "creating download directory %s", dir)
		return Failed(err), err
	}
	installer := filepath.Join(dir, url[strings.LastIndexByte(url, '/')+1:])
	defer func() {
		if err := os.Remove(installer); err != nil && !os.IsNotExist(err) {
			s.deps.Logger.Warn("could not remove installer", "path", installer, "error", err)
		}
	}()

	s.deps.say("Downloading %s", url)
	if err := s.deps.Fetcher.Fetch(ctx, url, installer); err != nil {
		return Failed(err), err
	}

	var args []string
	if s.deps.Options.Unattended {
		args = unattendedArgs
		s.deps.say("Running installer unattended...")
	} else {
		s.deps.say("Starting installer. Leave \"Add python.exe to PATH\" unchecked to keep your current default.")
	}

	if err := s.deps.Runner.Run(ctx, installer, args...); err != nil {
		if process.ExitCode(err) == installerCancelled {
			err = errors.Mark(errors.Wrap(err, "installer cancelled"), errors.ErrUserCancelled)
			return Failed(err), err
		}
		err = installStep(err, "running installer")
		return Failed(err), err
	}

	selector := "-" + v.MajorMinor()
	out, err := s.deps.Runner.Output(ctx, "py", selector, "-c", "import sys; print(sys.executable)")
	if err != nil {
		err = installStep(err, "locating interpreter with py "+selector)
		return Failed(err), err
	}

	return Outcome{
		Succeeded:     true,
		InstalledPath: strings.TrimSpace(string(out)),
		Command:       "py " + selector,
	}, nil
}

func (s *windowsStrategy) SetDefault(context.Context, string, version.Semantic, Profile) error {
	return errSetDefaultUnsupported(Windows)
}

// WindowsInstallerURL returns the installer for v on arch. ARM64 builds
// exist from 3.11; older versions fall back to the amd64 build, which runs
// under emulation. 32-bit hosts get the plain installer.
func WindowsInstallerURL(ftpURL string, v version.Semantic, arch string) string {
	suffix := ""
	switch arch {
	case "amd64":
		suffix = "-amd64"
	case "arm64":
		suffix = "-arm64"
		if v.Major < 3 || (v.Major == 3 && v.Minor < 11) {
			suffix = "-amd64"
		}
	}
	return artifactBase(ftpURL, v) + "python-" + v.String() + suffix + ".exe"
}
