package platform

import (
	"context"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/version"
)

// verifier implements VerifyInstalled for every strategy.
type verifier struct {
	runner process.Runner
}

func (v verifier) VerifyInstalled(ctx context.Context, path string, want version.Semantic) error {
	if path == "" {
		return errors.Mark(errors.New("installer did not report an interpreter path"), errors.ErrInstallFailed)
	}

	out, err := v.runner.Output(ctx, path, "--version")
	if err != nil {
		if errors.IsCancelled(err) {
			return err
		}
		return errors.Mark(errors.Wrapf(err, "running %s", path), errors.ErrInstallFailed)
	}

	got, err := version.Parse(string(out))
	if err != nil {
		return errors.Mark(
			errors.Wrapf(err, "%s --version printed %q", path, strings.TrimSpace(string(out))),
			errors.ErrVerificationMismatch,
		)
	}
	if !got.Equal(want) {
		return errors.Mark(
			errors.Newf("%s reports %s, expected %s", path, got, want),
			errors.ErrVerificationMismatch,
		)
	}
	return nil
}

// installStep marks a failed package manager or installer step. Interrupts
// keep their cancellation identity.
func installStep(err error, step string) error {
	if err == nil {
		return nil
	}
	if errors.IsCancelled(err) {
		return errors.Wrap(err, step)
	}
	return errors.Mark(errors.Wrap(err, step), errors.ErrInstallFailed)
}
