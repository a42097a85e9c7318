// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/process"
)

// Open runs the user's editor on path and waits for it to exit.
// $EDITOR may carry arguments, e.g. "code --wait".
func Open(ctx context.Context, runner process.Runner, path string) error {
	fields := strings.Fields(detectEditor(runner.LookPath))
	if err := runner.Run(ctx, fields[0], append(fields[1:], path)...); err != nil {
		return errors.Wrapf(err, "running editor %s", fields[0])
	}
	return nil
}

// detectEditor returns the editor command to use.
// Fallback chain: $EDITOR, $VISUAL, nano, vi (notepad on Windows).
func detectEditor(lookPath func(string) (string, error)) string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	if _, err := lookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
