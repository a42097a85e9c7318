package platform

import (
	"context"

	"github.com/thoreinstein/pyvm/internal/release"
)

type fedoraStrategy struct {
	linuxBase
}

func newFedora(d Deps) Strategy {
	return &fedoraStrategy{linuxBase{verifier: verifier{d.Runner}, deps: d, alternatives: "alternatives"}}
}

func (s *fedoraStrategy) Family() Family { return FedoraLike }

// Install installs the versioned python3.X package with dnf or yum.
func (s *fedoraStrategy) Install(ctx context.Context, target release.Candidate, profile Profile) (Outcome, error) {
	mgr := profile.PackageManager
	if mgr == "" {
		return Failed(errUnsupportedManager(FedoraLike)), errUnsupportedManager(FedoraLike)
	}
	if err := s.checkPrivileges(profile); err != nil {
		return Failed(err), err
	}

	pkg := "python" + target.Version.MajorMinor()
	s.deps.say("Installing %s with %s...", pkg, mgr)
	if err := installStep(s.privileged(ctx, profile, mgr, "install", "-y", pkg), mgr+" install"); err != nil {
		return Failed(err), err
	}

	return Outcome{
		Succeeded:     true,
		InstalledPath: s.locate(target.Version),
		Command:       pkg,
	}, nil
}
