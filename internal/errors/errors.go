package errors

import (
	"context"
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a failed operation or, for check, an available update.
	ExitFailure = 1

	// ExitCancelled indicates the user interrupted or declined the operation.
	// Matches the conventional 128+SIGINT status.
	ExitCancelled = 130
)

// Sentinel errors forming the pyvm failure taxonomy.
var (
	// ErrMalformedVersion indicates a string without a major.minor[.patch] pattern.
	ErrMalformedVersion = crdb.New("malformed version")

	// ErrNetwork indicates the release index could not be reached.
	ErrNetwork = crdb.New("network error")

	// ErrParse indicates the release index yielded no recognizable candidates.
	ErrParse = crdb.New("parse error")

	// ErrProbe indicates the active interpreter could not be identified.
	ErrProbe = crdb.New("probe error")

	// ErrUnsupportedPlatform indicates no install strategy exists for the host.
	ErrUnsupportedPlatform = crdb.New("unsupported platform")

	// ErrManualStepRequired indicates a guided stop: the user must finish by hand.
	ErrManualStepRequired = crdb.New("manual step required")

	// ErrInstallFailed indicates an installer or package manager step failed.
	ErrInstallFailed = crdb.New("install failed")

	// ErrVerificationMismatch indicates the installed interpreter reports another version.
	ErrVerificationMismatch = crdb.New("verification mismatch")

	// ErrUserCancelled indicates the user declined a prompt or interrupted the run.
	ErrUserCancelled = crdb.New("cancelled by user")

	// ErrInsufficientPrivileges indicates a privileged step cannot run.
	ErrInsufficientPrivileges = crdb.New("insufficient privileges")

	// ErrNotFound indicates the requested runtime or resource was not found.
	ErrNotFound = crdb.New("not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// Re-exported helpers so callers only import this package.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Is     = crdb.Is
	As     = crdb.As
	Mark   = crdb.Mark
	Unwrap = crdb.Unwrap
	Join   = crdb.Join
)

// taxonomy lists sentinels in the order Kind checks them.
var taxonomy = []struct {
	err  error
	name string
}{
	{ErrUserCancelled, "UserCancelled"},
	{ErrManualStepRequired, "ManualStepRequired"},
	{ErrVerificationMismatch, "VerificationMismatch"},
	{ErrUnsupportedPlatform, "UnsupportedPlatform"},
	{ErrInsufficientPrivileges, "InsufficientPrivileges"},
	{ErrInstallFailed, "InstallFailed"},
	{ErrProbe, "ProbeError"},
	{ErrNetwork, "NetworkError"},
	{ErrParse, "ParseError"},
	{ErrMalformedVersion, "MalformedVersion"},
	{ErrInvalidConfig, "InvalidConfig"},
	{ErrNotFound, "NotFound"},
}

// Kind returns the taxonomy name of err, or "" when err is nil or unclassified.
// Context cancellation is reported as UserCancelled.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if crdb.Is(err, context.Canceled) {
		return "UserCancelled"
	}
	for _, t := range taxonomy {
		if crdb.Is(err, t.err) {
			return t.name
		}
	}
	return ""
}

// IsCancelled reports whether err represents a user cancellation.
func IsCancelled(err error) bool {
	return crdb.Is(err, ErrUserCancelled) || crdb.Is(err, context.Canceled)
}

// StageError names the orchestrator stage in which a failure occurred.
type StageError struct {
	Stage string
	Err   error
}

// Error returns "<stage>: <err>".
func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Stage + " failed"
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// AtStage wraps err with the stage name. A nil err stays nil.
func AtStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit. A nil Err means the
	// command already reported its outcome and only the code matters.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewExitErrorWithSuggestion creates an ExitError with a suggestion.
func NewExitErrorWithSuggestion(err error, code int, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       code,
		Suggestion: suggestion,
	}
}

// NewUserError creates an ExitError with ExitFailure code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitFailure,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitFailure code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        crdb.Mark(err, ErrInvalidConfig),
		Code:       ExitFailure,
		Suggestion: "Run: pyvm config edit",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error carries only an exit code.
func (e *ExitError) Silent() bool {
	return e.Err == nil
}

// ExitCodeFor maps any error to a process exit status.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	if IsCancelled(err) {
		return ExitCancelled
	}
	return ExitFailure
}
