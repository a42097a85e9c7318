// Package probe identifies Python interpreters on the host: the configured
// interpreter, the one a bare invocation of the default command resolves
// to, and versioned pythonX.Y executables installed side by side.
//
// Nothing is cached. Every call re-runs the interpreter.
package probe

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
	"github.com/thoreinstein/pyvm/internal/process"
	"github.com/thoreinstein/pyvm/internal/version"
)

// executableScript prints the real interpreter behind a launcher or shim.
const executableScript = "import sys; print(sys.executable)"

// Runtime is an installed interpreter.
type Runtime struct {
	Version        version.Semantic `json:"version" yaml:"version" toml:"version"`
	ExecutablePath string           `json:"executable_path" yaml:"executable_path" toml:"executable_path"`
	IsDefault      bool             `json:"is_default" yaml:"is_default" toml:"is_default"`
	// Command is how the interpreter was invoked.
	Command string `json:"command" yaml:"command" toml:"command"`
}

// Prober runs interpreters to learn their identity.
type Prober struct {
	Runner process.Runner
	// Command is the interpreter Probe inspects.
	Command string
	// DefaultCommand is the name whose PATH resolution counts as the
	// system default.
	DefaultCommand string
	// EvalSymlinks resolves links; defaults to filepath.EvalSymlinks.
	EvalSymlinks func(string) (string, error)
	// PathDirs lists the directories Installed scans; defaults to $PATH.
	PathDirs func() []string
	Logger   *slog.Logger
}

// New returns a Prober for command. An empty defaultCommand means command.
func New(runner process.Runner, command, defaultCommand string, logger *slog.Logger) *Prober {
	if defaultCommand == "" {
		defaultCommand = command
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Prober{
		Runner:         runner,
		Command:        command,
		DefaultCommand: defaultCommand,
		EvalSymlinks:   filepath.EvalSymlinks,
		PathDirs:       func() []string { return filepath.SplitList(os.Getenv("PATH")) },
		Logger:         logger,
	}
}

// Probe identifies the configured interpreter. Failure is fatal for the
// caller: it is marked ErrProbe.
func (p *Prober) Probe(ctx context.Context) (Runtime, error) {
	return p.ProbePath(ctx, p.Command)
}

// ProbePath identifies the interpreter at path, which may also be a bare
// command name resolved through PATH.
func (p *Prober) ProbePath(ctx context.Context, path string) (Runtime, error) {
	out, err := p.Runner.Output(ctx, path, "--version")
	if err != nil {
		return Runtime{}, probeError(err, "running %s --version", path)
	}
	// Python 2 prints its banner on stderr; Output combines both streams.
	v, err := version.Parse(string(out))
	if err != nil {
		return Runtime{}, probeError(err, "reading version of %s", path)
	}

	exe, err := p.Runner.Output(ctx, path, "-c", executableScript)
	if err != nil {
		return Runtime{}, probeError(err, "locating executable of %s", path)
	}
	resolved := p.realPath(strings.TrimSpace(string(exe)))
	if resolved == "" {
		return Runtime{}, errors.Mark(errors.Newf("%s did not report its executable path", path), errors.ErrProbe)
	}

	def, err := p.DefaultPath()
	if err != nil {
		p.Logger.Debug("default interpreter not resolvable", "command", p.DefaultCommand, "error", err)
	}

	rt := Runtime{
		Version:        v,
		ExecutablePath: resolved,
		IsDefault:      def != "" && samePath(def, resolved),
		Command:        path,
	}
	p.Logger.Debug("probed interpreter", "command", path, "version", v.String(), "path", resolved, "default", rt.IsDefault)
	return rt, nil
}

// DefaultPath returns the real path a bare invocation of the default
// command runs.
func (p *Prober) DefaultPath() (string, error) {
	found, err := p.Runner.LookPath(p.DefaultCommand)
	if err != nil {
		return "", err
	}
	return p.realPath(found), nil
}

// versionedName matches side-by-side interpreters such as python3.13 or
// python3.13.exe.
var versionedName = regexp.MustCompile(`^python(\d+\.\d+)(\.exe)?$`)

// Installed lists the versioned interpreters on PATH, newest first. The
// same real executable reached through several links is listed once.
// Interpreters that fail to run are skipped.
func (p *Prober) Installed(ctx context.Context) ([]Runtime, error) {
	seen := make(map[string]bool)
	var found []Runtime

	for _, dir := range p.PathDirs() {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !versionedName.MatchString(e.Name()) {
				continue
			}
			candidate := filepath.Join(dir, e.Name())
			resolved := p.realPath(candidate)
			if seen[resolved] {
				continue
			}
			seen[resolved] = true

			rt, err := p.ProbePath(ctx, candidate)
			if err != nil {
				if errors.IsCancelled(err) {
					return nil, err
				}
				p.Logger.Debug("skipping interpreter", "path", candidate, "error", err)
				continue
			}
			rt.Command = e.Name()
			found = append(found, rt)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[j].Version.Less(found[i].Version)
	})
	return found, nil
}

// Find returns the side-by-side interpreter for want. A "X.Y" request
// matches any patch level; "X.Y.Z" must match exactly.
func (p *Prober) Find(ctx context.Context, want string) (Runtime, error) {
	v, err := version.Parse(want)
	if err != nil {
		return Runtime{}, err
	}
	exact := strings.Count(strings.TrimSpace(want), ".") >= 2

	installed, err := p.Installed(ctx)
	if err != nil {
		return Runtime{}, err
	}
	for _, rt := range installed {
		if rt.Version.MajorMinor() != v.MajorMinor() {
			continue
		}
		if exact && !rt.Version.Equal(v) {
			continue
		}
		return rt, nil
	}
	return Runtime{}, errors.Mark(errors.Newf("python %s is not installed side by side", want), errors.ErrNotFound)
}

func (p *Prober) realPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := p.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func samePath(a, b string) bool {
	if filepath.Separator == '\\' {
		return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func probeError(err error, format string, args ...any) error {
	if errors.IsCancelled(err) {
		return errors.Wrapf(err, format, args...)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), errors.ErrProbe)
}
