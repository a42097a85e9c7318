package platform

import (
	"context"
	"path/filepath"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/version"
)

// linuxBase holds what the Debian and Fedora strategies share: privilege
// escalation through sudo, interpreter lookup and the alternatives system.
type linuxBase struct {
	verifier
	deps Deps
	// alternatives is "update-alternatives" on Debian, "alternatives" on
	// Fedora.
	alternatives string
}

// privileged runs a command as root, through sudo when not already root.
// Missing sudo is reported rather than worked around.
func (b linuxBase) privileged(ctx context.Context, profile Profile, name string, args ...string) error {
	if profile.IsAdmin {
		return b.deps.Runner.Run(ctx, name, args...)
	}
	if _, err := b.deps.Runner.LookPath("sudo"); err != nil {
		return errors.Mark(
			errors.Newf("%s needs root privileges and sudo is not available; re-run as root", name),
			errors.ErrInsufficientPrivileges,
		)
	}
	return b.deps.Runner.Run(ctx, "sudo", append([]string{name}, args...)...)
}

// checkPrivileges fails early, before any step runs, when root cannot be
// obtained.
func (b linuxBase) checkPrivileges(profile Profile) error {
	if profile.IsAdmin {
		return nil
	}
	if _, err := b.deps.Runner.LookPath("sudo"); err != nil {
		return errors.Mark(
			errors.New("installing system packages needs root privileges and sudo is not available"),
			errors.ErrInsufficientPrivileges,
		)
	}
	return nil
}

// locate finds the versioned interpreter after a package install.
func (b linuxBase) locate(v version.Semantic) string {
	name := "python" + v.MajorMinor()
	if path, err := b.deps.Runner.LookPath(name); err == nil {
		return path
	}
	return filepath.Join("/usr/bin", name)
}

// SetDefault registers path with the alternatives system and selects it
// for python3.
func (b linuxBase) SetDefault(ctx context.Context, path string, v version.Semantic, profile Profile) error {
	return NewAlternatives(b.alternatives, b.privilegedRunner(profile)).Set(ctx, path, v)
}

func (b linuxBase) privilegedRunner(profile Profile) func(ctx context.Context, name string, args ...string) error {
	return func(ctx context.Context, name string, args ...string) error {
		return b.privileged(ctx, profile, name, args...)
	}
}
