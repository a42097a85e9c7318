package platform

import (
	"context"
	"path"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

type macStrategy struct {
	verifier
	deps Deps
}

func newMacOS(d Deps) Strategy {
	return &macStrategy{verifier: verifier{d.Runner}, deps: d}
}

func (s *macStrategy) Family() Family { return MacOS }

// Install uses Homebrew's versioned python@X.Y formula. Without Homebrew
// it stops with the official installer link, since a GUI package cannot be
// driven unattended.
func (s *macStrategy) Install(ctx context.Context, target release.Candidate, profile Profile) (Outcome, error) {
	mm := target.Version.MajorMinor()
	if profile.PackageManager != "brew" {
		err := &ManualStepError{
			Reason: "Homebrew is not installed",
			URL:    MacInstallerURL(s.deps.Options.FTPURL, target.Version),
			Steps: []string{
				"Download and open the installer above, or see " + target.URL,
				"Or install Homebrew (https://brew.sh) and run: brew install python@" + mm,
			},
		}
		return Failed(err), err
	}
	if profile.IsAdmin {
		err := errors.Mark(
			errors.New("brew refuses to run as root; re-run pyvm as your normal user"),
			errors.ErrInstallFailed,
		)
		return Failed(err), err
	}

	formula := "python@" + mm
	s.deps.say("Installing %s with Homebrew...", formula)
	if err := installStep(s.deps.Runner.Run(ctx, "brew", "install", formula), "brew install "+formula); err != nil {
		return Failed(err), err
	}

	out, err := s.deps.Runner.Output(ctx, "brew", "--prefix", formula)
	if err != nil {
		err = installStep(err, "brew --prefix "+formula)
		return Failed(err), err
	}
	prefix := strings.TrimSpace(string(out))
	return Outcome{
		Succeeded:     true,
		InstalledPath: path.Join(prefix, "bin", "python"+mm),
		Command:       "python" + mm,
	}, nil
}

func (s *macStrategy) SetDefault(context.Context, string, version.Semantic, Profile) error {
	return errSetDefaultUnsupported(MacOS)
}

// MacInstallerURL returns the universal macOS package for v.
func MacInstallerURL(ftpURL string, v version.Semantic) string {
	return artifactBase(ftpURL, v) + "python-" + v.String() + "-macos11.pkg"
}

func artifactBase(ftpURL string, v version.Semantic) string {
	if ftpURL == "" {
		ftpURL = DefaultFTPURL
	}
	if !strings.HasSuffix(ftpURL, "/") {
		ftpURL += "/"
	}
	// Artifacts for prereleases live under the final version's directory.
	dir := version.Semantic{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	return ftpURL + dir.String() + "/"
}

func errSetDefaultUnsupported(f Family) error {
	return errors.Mark(
		errors.Newf("set-default is only supported on Linux via the alternatives system (detected %s)", f),
		errors.ErrUnsupportedPlatform,
	)
}
