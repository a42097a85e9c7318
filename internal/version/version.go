// Package version parses and orders Python release numbers.
//
// Interpreter banners ("Python 3.12.1"), release labels ("3.13.0rc2") and
// build details in parentheses are all accepted. Ordering follows PEP 440 for
// the subset of versions CPython publishes: a < b < rc < final, and a missing
// patch component counts as zero.
package version

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/thoreinstein/pyvm/internal/errors"
)

var (
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	versionRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?(?:(rc|alpha|beta|a|b|c)(\d*))?`)
	exactRe   = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// preLabels maps accepted prerelease spellings to their canonical label.
var preLabels = map[string]string{
	"a":     "a",
	"alpha": "a",
	"b":     "b",
	"beta":  "b",
	"c":     "rc",
	"rc":    "rc",
}

// Semantic is a parsed Python version.
type Semantic struct {
	Major uint64
	Minor uint64
	Patch uint64

	// PreLabel is "a", "b", "rc" or empty for a final release.
	PreLabel string
	// PreNumber is the prerelease serial, e.g. 2 in "rc2".
	PreNumber uint64
}

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "lt"
	case Equal:
		return "eq"
	case Greater:
		return "gt"
	default:
		return "Ordering(" + strconv.Itoa(int(o)) + ")"
	}
}

// Parse extracts the first major.minor[.patch][pre] pattern from raw.
// Text in parentheses is discarded before matching so build metadata such as
// "(main, Oct  2 2023, 13:45:54)" cannot be mistaken for a version.
func Parse(raw string) (Semantic, error) {
	cleaned := parenRe.ReplaceAllString(raw, " ")
	m := versionRe.FindStringSubmatch(cleaned)
	if m == nil {
		return Semantic{}, errors.Mark(
			errors.Newf("no version number in %q", strings.TrimSpace(raw)),
			errors.ErrMalformedVersion,
		)
	}

	var v Semantic
	var err error
	if v.Major, err = parseUint(m[1], raw); err != nil {
		return Semantic{}, err
	}
	if v.Minor, err = parseUint(m[2], raw); err != nil {
		return Semantic{}, err
	}
	if m[3] != "" {
		if v.Patch, err = parseUint(m[3], raw); err != nil {
			return Semantic{}, err
		}
	}
	if m[4] != "" {
		v.PreLabel = preLabels[m[4]]
		if m[5] != "" {
			if v.PreNumber, err = parseUint(m[5], raw); err != nil {
				return Semantic{}, err
			}
		}
	}
	return v, nil
}

// ParseExact accepts only a plain "X.Y.Z" final release, the form required
// when a user names a version to install.
func ParseExact(raw string) (Semantic, error) {
	raw = strings.TrimSpace(raw)
	if !exactRe.MatchString(raw) {
		return Semantic{}, errors.Mark(
			errors.Newf("invalid version %q: expected X.Y.Z (e.g. 3.12.1)", raw),
			errors.ErrMalformedVersion,
		)
	}
	return Parse(raw)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level constants.
func MustParse(raw string) Semantic {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func parseUint(s, raw string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Mark(
			errors.Wrapf(err, "version component %q in %q", s, raw),
			errors.ErrMalformedVersion,
		)
	}
	return n, nil
}

// Compare orders v against o.
func (v Semantic) Compare(o Semantic) Ordering {
	return Ordering(v.semver().Compare(o.semver()))
}

// Compare orders a against b.
func Compare(a, b Semantic) Ordering {
	return a.Compare(b)
}

func (v Semantic) Less(o Semantic) bool  { return v.Compare(o) == Less }
func (v Semantic) Equal(o Semantic) bool { return v.Compare(o) == Equal }

// IsPrerelease reports whether v is an alpha, beta or release candidate.
func (v Semantic) IsPrerelease() bool {
	return v.PreLabel != ""
}

// IsZero reports whether v is the zero value.
func (v Semantic) IsZero() bool {
	return v == Semantic{}
}

// MajorMinor returns "X.Y", the name of a side-by-side installation.
func (v Semantic) MajorMinor() string {
	return strconv.FormatUint(v.Major, 10) + "." + strconv.FormatUint(v.Minor, 10)
}

// Branch returns the release branch of v, i.e. v with patch and
// prerelease cleared.
func (v Semantic) Branch() Semantic {
	return Semantic{Major: v.Major, Minor: v.Minor}
}

// String renders v in Python's notation, e.g. "3.12.1" or "3.13.0rc2".
func (v Semantic) String() string {
	s := v.MajorMinor() + "." + strconv.FormatUint(v.Patch, 10)
	if v.PreLabel != "" {
		s += v.PreLabel + strconv.FormatUint(v.PreNumber, 10)
	}
	return s
}

// Compact returns the digits of v without separators, as used in
// python.org release page slugs ("3.12.1" -> "3121").
func (v Semantic) Compact() string {
	return strings.ReplaceAll(v.String(), ".", "")
}

// semver maps v onto a semver value whose prerelease identifiers sort the
// same way Python's do: "a.N" < "b.N" < "rc.N" < no prerelease.
func (v Semantic) semver() *semver.Version {
	pre := ""
	if v.PreLabel != "" {
		pre = v.PreLabel + "." + strconv.FormatUint(v.PreNumber, 10)
	}
	return semver.New(v.Major, v.Minor, v.Patch, pre, "")
}

// MarshalText implements encoding.TextMarshaler so reports encode versions
// as strings.
func (v Semantic) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Semantic) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
