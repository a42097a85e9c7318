// Package errors provides error handling conventions for the pyvm CLI.
//
// Errors are built with github.com/cockroachdb/errors, whose constructors and
// predicates are re-exported here so callers import a single package.
//
// # Taxonomy
//
// Each failure the update engine can report has a sentinel. Callers attach a
// sentinel with [Mark] and test for it with [Is]:
//
//	err := errors.Mark(errors.Wrap(err, "fetching release index"), errors.ErrNetwork)
//	if errors.Is(err, errors.ErrNetwork) {
//	    // offline
//	}
//
// [Kind] returns the taxonomy name (NetworkError, ManualStepRequired, ...) used
// in install outcomes and reports.
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed, or check found no update
//   - ExitFailure (1): failure, or check found an update
//   - ExitCancelled (130): the user declined a prompt or pressed Ctrl+C
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. An ExitError with a nil Err only carries a code; main exits
// with it without printing anything.
package errors
