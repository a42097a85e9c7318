package platform

import (
	"context"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/release"
	"github.com/thoreinstein/pyvm/internal/version"
)

// unknownStrategy refuses everything without spawning a process.
type unknownStrategy struct {
	verifier
}

func newUnknown(d Deps) Strategy {
	return &unknownStrategy{verifier{d.Runner}}
}

func (s *unknownStrategy) Family() Family { return Unknown }

func (s *unknownStrategy) Install(context.Context, release.Candidate, Profile) (Outcome, error) {
	err := errors.Mark(
		errors.New("no install strategy for this platform; install Python manually or with pyenv (https://github.com/pyenv/pyenv)"),
		errors.ErrUnsupportedPlatform,
	)
	return Failed(err), err
}

func (s *unknownStrategy) SetDefault(context.Context, string, version.Semantic, Profile) error {
	return errSetDefaultUnsupported(Unknown)
}
