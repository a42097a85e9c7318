package release

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/version"
)

// ParseIndex extracts release candidates from the python.org downloads page.
//
// Three parts of the page are read:
//   - download buttons ("Download Python 3.13.1"), which always name the
//     current stable release
//   - the release list (span.release-number), one entry per published release
//   - the active releases table, which gives the support status of each
//     X.Y branch and decides whether a listed release is stable or security
//
// Button entries come first, then the release list in document order, with
// equal versions collapsed. Relative links are resolved against base.
func ParseIndex(r io.Reader, base *url.URL) ([]Candidate, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing release index"), errors.ErrParse)
	}

	branchKinds := make(map[string]Kind)
	var buttons, listed []Candidate
	indexURL := ""
	if base != nil {
		indexURL = base.String()
	}

	walk(doc, func(n *html.Node) bool {
		switch {
		case n.Data == "a" && hasClass(n, "button"):
			text := textContent(n)
			if !strings.Contains(text, "Python") {
				return false
			}
			v, err := version.Parse(text)
			if err != nil {
				return false
			}
			buttons = append(buttons, Candidate{
				Version: v,
				URL:     ReleaseURL(indexURL, v),
				Kind:    kindOfVersion(v, Stable),
			})
			return false

		case hasClass(n, "release-number"):
			v, err := version.Parse(textContent(n))
			if err != nil {
				return false
			}
			link := ReleaseURL(indexURL, v)
			if href := findHref(n); href != "" {
				link = resolve(base, href)
			}
			listed = append(listed, Candidate{Version: v, URL: link, Kind: Stable})
			return false

		case n.Data == "li":
			branch := textContent(findClass(n, "release-version"))
			status := textContent(findClass(n, "release-status"))
			if branch == "" || status == "" {
				return true
			}
			if kind, ok := kindFromStatus(status); ok {
				branchKinds[branch] = kind
			}
			return false
		}
		return true
	})

	for i := range listed {
		c := &listed[i]
		if kind, ok := branchKinds[c.Version.MajorMinor()]; ok {
			c.Kind = kind
		}
		c.Kind = kindOfVersion(c.Version, c.Kind)
	}

	found := dedupe(append(buttons, listed...))
	if len(found) == 0 {
		return nil, errors.Mark(errors.New("no releases found in downloads index"), errors.ErrParse)
	}
	return found, nil
}

// kindOfVersion forces prerelease versions to Prerelease regardless of what
// the branch table says.
func kindOfVersion(v version.Semantic, kind Kind) Kind {
	if v.IsPrerelease() {
		return Prerelease
	}
	return kind
}

// walk visits n and its descendants depth-first in document order. fn returns
// false to skip a node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hasClass(n *html.Node, class string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func findClass(n *html.Node, class string) *html.Node {
	var hit *html.Node
	walk(n, func(el *html.Node) bool {
		if hit != nil {
			return false
		}
		if hasClass(el, class) {
			hit = el
			return false
		}
		return true
	})
	return hit
}

func findHref(n *html.Node) string {
	var href string
	walk(n, func(el *html.Node) bool {
		if href != "" {
			return false
		}
		if el.Data == "a" {
			for _, a := range el.Attr {
				if a.Key == "href" {
					href = a.Val
				}
			}
		}
		return true
	})
	return href
}

// textContent returns the whitespace-normalized text below n.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
