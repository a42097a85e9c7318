// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/probe"
)

// Sentinel errors for selection.
var (
	ErrNoChoices          = errors.New("nothing to select from")
	ErrSelectionCancelled = errors.Mark(errors.New("selection cancelled"), errors.ErrUserCancelled)
)

// Confirmer asks yes/no questions on a terminal.
type Confirmer struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewConfirmer creates a Confirmer using stdin and stdout.
func NewConfirmer() *Confirmer {
	return NewConfirmerWithIO(os.Stdin, os.Stdout)
}

// NewConfirmerWithIO creates a Confirmer with custom reader and writer for testing.
func NewConfirmerWithIO(r io.Reader, w io.Writer) *Confirmer {
	return &Confirmer{reader: bufio.NewReader(r), writer: w}
}

// Confirm prints question and waits for y or n. Anything other than
// y/yes counts as no. EOF (Ctrl+D) cancels, and so does ctx.
func (c *Confirmer) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(c.writer, "%s [y/N]: ", question)

	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := c.reader.ReadString('\n')
		ch <- line{text, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.writer)
		return false, ctx.Err()
	case in := <-ch:
		if in.err != nil && (in.text == "" || !errors.Is(in.err, io.EOF)) {
			fmt.Fprintln(c.writer)
			if errors.Is(in.err, io.EOF) {
				return false, ErrSelectionCancelled
			}
			return false, errors.Wrap(in.err, "reading answer")
		}
		switch strings.ToLower(strings.TrimSpace(in.text)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// Finder is the fuzzy finder signature, replaceable in tests.
type Finder func(runtimes []probe.Runtime) (int, error)

// PickRuntime lets the user choose an interpreter with a fuzzy finder.
// A single candidate is returned without prompting.
func PickRuntime(runtimes []probe.Runtime, find Finder) (probe.Runtime, error) {
	if len(runtimes) == 0 {
		return probe.Runtime{}, ErrNoChoices
	}
	if len(runtimes) == 1 {
		return runtimes[0], nil
	}
	if find == nil {
		find = fuzzyFind
	}

	idx, err := find(runtimes)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return probe.Runtime{}, ErrSelectionCancelled
		}
		return probe.Runtime{}, errors.Wrap(err, "interactive selection failed")
	}
	return runtimes[idx], nil
}

func fuzzyFind(runtimes []probe.Runtime) (int, error) {
	return fuzzyfinder.Find(
		runtimes,
		func(i int) string {
			label := fmt.Sprintf("Python %s (%s)", runtimes[i].Version, runtimes[i].Command)
			if runtimes[i].IsDefault {
				label += " *default"
			}
			return label
		},
		fuzzyfinder.WithPromptString("set default> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			rt := runtimes[i]
			return fmt.Sprintf("Version: %s\nCommand: %s\nPath:    %s\nDefault: %t",
				rt.Version, rt.Command, rt.ExecutablePath, rt.IsDefault)
		}),
	)
}
