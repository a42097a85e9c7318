// Package process runs external commands for the probe and the platform
// installers. Everything that spawns a subprocess goes through [Runner] so
// tests can substitute a mock and assert that nothing was spawned.
package process

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

// Runner executes commands.
type Runner interface {
	// Output runs the command and returns its combined stdout and stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run runs the command attached to the terminal so package managers and
	// installers can prompt the user.
	Run(ctx context.Context, name string, args ...string) error
	// LookPath searches PATH for an executable.
	LookPath(file string) (string, error)
}

// waitDelay bounds how long Wait blocks on a killed child's open pipes.
const waitDelay = 5 * time.Second

// ExecRunner is the [Runner] backed by os/exec. Cancelling the context kills
// the child process.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner returns a runner wired to the process's standard streams.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, name, args)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	r.Logger.Log(ctx, logging.LevelTrace, "exec",
		"command", commandLine(name, args),
		"duration", time.Since(start),
		"output", strings.TrimSpace(buf.String()),
	)
	if err != nil {
		return buf.Bytes(), r.wrap(ctx, err, name, args, buf.String())
	}
	return buf.Bytes(), nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	r.Logger.Debug("running", "command", commandLine(name, args))
	if err := cmd.Run(); err != nil {
		return r.wrap(ctx, err, name, args, "")
	}
	return nil
}

func (r *ExecRunner) LookPath(file string) (string, error) {
	path, err := exec.LookPath(file)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "looking up %s", file), errors.ErrNotFound)
	}
	return path, nil
}

func (r *ExecRunner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd
}

func (r *ExecRunner) wrap(ctx context.Context, err error, name string, args []string, output string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrapf(ctxErr, "%s interrupted", name)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return errors.Mark(errors.Wrapf(err, "%s not found", name), errors.ErrNotFound)
	}

	output = lastLine(output)
	if output != "" {
		return errors.Wrapf(err, "%s: %s", commandLine(name, args), output)
	}
	return errors.Wrap(err, commandLine(name, args))
}

// ExitCode returns the exit status carried by err, or -1 when err did not
// come from a process that ran to completion.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
