package config

import (
	"fmt"
	"net/url"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/version"
)

// SchemaVersion is the only config schema this build understands.
const SchemaVersion = 1

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a schema version other than SchemaVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidURL indicates a URL that is not absolute http(s).
	ErrInvalidURL = errors.New("must be an http or https URL")

	// ErrInvalidTimeout indicates a zero or negative timeout.
	ErrInvalidTimeout = errors.New("must be a positive duration")

	// ErrEmptyCommand indicates python.command is blank.
	ErrEmptyCommand = errors.New("must not be empty")

	// ErrInvalidMinimum indicates policy.minimum_version is not X.Y[.Z].
	ErrInvalidMinimum = errors.New("must be a version such as 3.11 or 3.11.4")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	add := func(key string, value any, err error) {
		errs = append(errs, &FieldError{Key: key, Value: value, Err: err})
	}

	if cfg.Version != SchemaVersion {
		add("version", cfg.Version, ErrUnsupportedVersion)
	}
	if cfg.Python.Command == "" {
		add("python.command", "", ErrEmptyCommand)
	}
	if !validURL(cfg.Release.IndexURL) {
		add("release.index_url", cfg.Release.IndexURL, ErrInvalidURL)
	}
	if !validURL(cfg.Release.FTPURL) {
		add("release.ftp_url", cfg.Release.FTPURL, ErrInvalidURL)
	}
	if cfg.Release.Timeout <= 0 {
		add("release.timeout", cfg.Release.Timeout, ErrInvalidTimeout)
	}
	if cfg.Download.Timeout <= 0 {
		add("download.timeout", cfg.Download.Timeout, ErrInvalidTimeout)
	}
	if m := cfg.Policy.MinimumVersion; m != "" {
		if _, err := version.Parse(m); err != nil {
			add("policy.minimum_version", m, ErrInvalidMinimum)
		}
	}

	return errs
}

// MinimumVersion returns the parsed policy minimum, or the zero version.
func (c *Config) MinimumVersion() version.Semantic {
	v, err := version.Parse(c.Policy.MinimumVersion)
	if err != nil {
		return version.Semantic{}
	}
	return v
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FieldError represents an error for a specific config key.
type FieldError struct {
	Key   string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (got %v)", e.Key, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
