// Package pagination parses the Link header metadata returned by paginated
// GitHub REST responses.
//
// A header such as
//
//	<https://api.github.com/repositories/1/issues?state=open&per_page=1&page=2>; rel="next",
//	<https://api.github.com/repositories/1/issues?state=open&per_page=1&page=42>; rel="last"
//
// is turned into a Links value keyed by relation name.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tomnomnom/linkheader"
)

// RelLast is the relation name of the link to the final page.
const RelLast = "last"

// ErrInvalidPage is returned when a page number cannot be read from a link target.
var ErrInvalidPage = errors.New("invalid page parameter")

// Link is a single relation-labeled pagination target.
type Link struct {
	URL string
}

// Links maps a relation name ("next", "last", ...) to its target.
type Links map[string]Link

// Last returns the link labeled "last", if present.
func (l Links) Last() (Link, bool) {
	link, ok := l[RelLast]
	return link, ok
}

// ParseLinkHeader parses the value of a Link header. Links without a target or
// without a rel parameter are skipped. An empty header yields an empty Links.
func ParseLinkHeader(header string) Links {
	links := make(Links)
	for _, link := range linkheader.Parse(header) {
		if link.URL == "" {
			continue
		}
		// A single rel attribute may carry several space-separated relation names.
		for _, rel := range strings.Fields(link.Rel) {
			links[rel] = Link{URL: link.URL}
		}
	}
	return links
}

// PageNumber extracts the value of the "page" query parameter from a link target.
// A missing, non-numeric or non-positive value is reported as ErrInvalidPage.
func PageNumber(target string) (int, error) {
	u, err := url.Parse(target)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPage, "parse link target %q: %v", target, err)
	}
	raw := u.Query().Get("page")
	if raw == "" {
		return 0, errors.Wrapf(ErrInvalidPage, "no page parameter in %q", target)
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPage, "page %q in %q is not a number", raw, target)
	}
	if page < 1 {
		return 0, errors.Wrapf(ErrInvalidPage, "page %d in %q is out of range", page, target)
	}
	return page, nil
}
