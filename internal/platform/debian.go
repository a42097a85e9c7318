package platform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/pkg/fileutil"
)

// DefaultAptSourcesDir holds apt repository definitions.
const DefaultAptSourcesDir = "/etc/apt/sources.list.d"

type debianStrategy struct {
	linuxBase
}

func newDebian(d Deps) Strategy {
	return &debianStrategy{linuxBase{verifier: verifier{d.Runner}, deps: d, alternatives: "update-alternatives"}}
}

func (s *debianStrategy) Family() Family { return DebianLike }

// Install registers the third-party repository if needed, refreshes the
// index and installs pythonX.Y with its venv and dev packages. The
// unversioned python3 package is never touched. Steps stop at the first
// failure; apt's own transactions keep a failed install from leaving
// half-configured packages.
func (s *debianStrategy) Install(ctx context.Context, target release.Candidate, profile Profile) (Outcome, error) {
	apt := profile.PackageManager
	if apt == "" {
		return Failed(errUnsupportedManager(DebianLike)), errUnsupportedManager(DebianLike)
	}
	if err := s.checkPrivileges(profile); err != nil {
		return Failed(err), err
	}

	mm := target.Version.MajorMinor()
	if err := s.ensureRepository(ctx, profile, apt); err != nil {
		return Failed(err), err
	}

	s.deps.say("Updating package index...")
	if err := installStep(s.privileged(ctx, profile, apt, "update"), apt+" update"); err != nil {
		return Failed(err), err
	}

	pkgs := []string{"python" + mm, "python" + mm + "-venv", "python" + mm + "-dev"}
	s.deps.say("Installing %s...", strings.Join(pkgs, " "))
	args := append([]string{"install", "-y"}, pkgs...)
	if err := installStep(s.privileged(ctx, profile, apt, args...), apt+" install"); err != nil {
		return Failed(err), err
	}

	path := s.locate(target.Version)
	return Outcome{Succeeded: true, InstalledPath: path, Command: "python" + mm}, nil
}

// ensureRepository adds the configured repository unless a source file for
// it already exists.
func (s *debianStrategy) ensureRepository(ctx context.Context, profile Profile, apt string) error {
	repo := s.deps.Options.DebianRepository
	if repo == "" {
		return nil
	}
	if repositoryPresent(s.sourcesDir(), repo) {
		s.deps.Logger.Debug("repository already registered", "repository", repo)
		return nil
	}

	if _, err := s.deps.Runner.LookPath("add-apt-repository"); err != nil {
		s.deps.say("Installing software-properties-common...")
		err := s.privileged(ctx, profile, apt, "install", "-y", "software-properties-common")
		if err := installStep(err, "installing software-properties-common"); err != nil {
			return err
		}
	}

	s.deps.say("Adding repository %s (third-party)...", repo)
	return installStep(s.privileged(ctx, profile, "add-apt-repository", "-y", repo), "add-apt-repository "+repo)
}

func (s *debianStrategy) sourcesDir() string {
	if s.deps.Options.AptSourcesDir != "" {
		return s.deps.Options.AptSourcesDir
	}
	return DefaultAptSourcesDir
}

// repositoryPresent reports whether any source file in dir names repo.
// "ppa:deadsnakes/ppa" matches files such as
// deadsnakes-ubuntu-ppa-noble.sources or a .list file whose body points at
// ppa.launchpadcontent.net/deadsnakes.
func repositoryPresent(dir, repo string) bool {
	needle := repositoryNeedle(repo)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".list") && !strings.HasSuffix(name, ".sources") {
			continue
		}
		if strings.Contains(name, needle) {
			return true
		}
		data, err := fileutil.ReadFileWithLimit(filepath.Join(dir, name))
		if err == nil && strings.Contains(string(data), "/"+needle+"/") {
			return true
		}
	}
	return false
}

func repositoryNeedle(repo string) string {
	if rest, ok := strings.CutPrefix(repo, "ppa:"); ok {
		owner, _, _ := strings.Cut(rest, "/")
		return owner
	}
	return repo
}

func errUnsupportedManager(f Family) error {
	return errors.Mark(
		errors.Newf("no supported package manager found for %s (looked for %s)", f, strings.Join(packageManagers[f], ", ")),
		errors.ErrUnsupportedPlatform,
	)
}
