// Package main is the entry point for the pyvm CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thoreinstein/pyvm/cmd/pyvm/commands"
	"github.com/thoreinstein/pyvm/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		report(err)
	}
	os.Exit(errors.ExitCodeFor(err))
}

// report prints err and its suggestion to stderr. Silent exit errors carry
// only a code.
func report(err error) {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Silent() {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		if exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
