package platform

import (
	"context"
	"strconv"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/version"
)

const (
	// DefaultLink is the path the alternatives system manages.
	DefaultLink = "/usr/bin/python3"
	// DefaultAlternativeName is the alternatives group.
	DefaultAlternativeName = "python3"
)

// Alternatives repoints the default interpreter through update-alternatives
// (Debian) or alternatives (Fedora).
type Alternatives struct {
	Tool string
	Link string
	Name string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewAlternatives returns a manager for the python3 group. run executes
// commands with root privileges.
func NewAlternatives(tool string, run func(ctx context.Context, name string, args ...string) error) *Alternatives {
	return &Alternatives{
		Tool: tool,
		Link: DefaultLink,
		Name: DefaultAlternativeName,
		run:  run,
	}
}

// Priority orders alternatives so newer interpreters rank higher:
// 3.13 -> 313.
func Priority(v version.Semantic) int {
	return int(v.Major*100 + v.Minor)
}

// Set installs path as an alternative and selects it.
func (a *Alternatives) Set(ctx context.Context, path string, v version.Semantic) error {
	if path == "" {
		return errors.Mark(errors.New("no interpreter path to set as default"), errors.ErrNotFound)
	}
	prio := strconv.Itoa(Priority(v))
	if err := a.run(ctx, a.Tool, "--install", a.Link, a.Name, path, prio); err != nil {
		return installStep(err, a.Tool+" --install")
	}
	if err := a.run(ctx, a.Tool, "--set", a.Name, path); err != nil {
		return installStep(err, a.Tool+" --set")
	}
	return nil
}
