package release

import (
	"net/url"
	"strings"

	"github.com/thoreinstein/pyvm/internal/version"
)

// Kind classifies a release by the support status of its branch.
type Kind int

const (
	// Stable releases are final versions on a branch receiving bugfixes.
	Stable Kind = iota
	// Prerelease covers alphas, betas and release candidates.
	Prerelease
	// Security releases are on branches that only receive security fixes
	// or have reached end of life.
	Security
)

func (k Kind) String() string {
	switch k {
	case Stable:
		return "stable"
	case Prerelease:
		return "prerelease"
	case Security:
		return "security"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// kindFromStatus maps the status column of the python.org active release
// table onto a Kind.
func kindFromStatus(status string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "bugfix":
		return Stable, true
	case "security", "end of life", "end-of-life", "eol":
		return Security, true
	case "prerelease", "pre-release", "feature":
		return Prerelease, true
	default:
		return Stable, false
	}
}

// Candidate is one release found on the downloads index.
type Candidate struct {
	Version version.Semantic `json:"version" yaml:"version" toml:"version"`
	// URL is the release notes page.
	URL  string `json:"url" yaml:"url" toml:"url"`
	Kind Kind   `json:"kind" yaml:"kind" toml:"kind"`
}

// ReleaseURL returns the python.org release page for v, e.g.
// https://www.python.org/downloads/release/python-3121/.
func ReleaseURL(indexURL string, v version.Semantic) string {
	base, err := url.Parse(indexURL)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(DefaultIndexURL)
	}
	ref := &url.URL{Path: "/downloads/release/python-" + v.Compact() + "/"}
	return base.ResolveReference(ref).String()
}

// ForVersion builds the candidate for an explicitly requested version
// without consulting the index.
func ForVersion(indexURL string, v version.Semantic) Candidate {
	kind := Stable
	if v.IsPrerelease() {
		kind = Prerelease
	}
	return Candidate{Version: v, URL: ReleaseURL(indexURL, v), Kind: kind}
}

// Latest returns the highest stable candidate. Candidates that compare equal
// keep the earliest one, so the result depends only on input order.
func Latest(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if c.Kind != Stable {
			continue
		}
		if !found || c.Version.Compare(best.Version) == version.Greater {
			best = c
			found = true
		}
	}
	return best, found
}

// dedupe collapses candidates with equal versions. A stable entry replaces
// an earlier security entry for the same version; otherwise the first entry
// wins.
func dedupe(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	seen := make(map[string]int, len(candidates))
	for _, c := range candidates {
		key := c.Version.String()
		i, ok := seen[key]
		if !ok {
			seen[key] = len(out)
			out = append(out, c)
			continue
		}
		if out[i].Kind == Security && c.Kind == Stable {
			out[i].Kind = Stable
		}
	}
	return out
}
