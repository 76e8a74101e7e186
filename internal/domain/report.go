// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxContributors is the number of top contributors retained in a report.
const MaxContributors = 5

// ErrInvalidIdentity is returned when the owner or repository name is empty or
// is not a single path segment.
var ErrInvalidIdentity = errors.New("invalid repository identity")

// RepositoryIdentity names the repository under analysis.
type RepositoryIdentity struct {
	Owner string
	Name  string
}

// NewRepositoryIdentity trims and validates the given owner and repository names.
func NewRepositoryIdentity(owner, name string) (RepositoryIdentity, error) {
	id := RepositoryIdentity{
		Owner: strings.TrimSpace(owner),
		Name:  strings.TrimSpace(name),
	}
	if id.Owner == "" || id.Name == "" {
		return RepositoryIdentity{}, errors.Wrap(ErrInvalidIdentity, "owner and repository name must not be empty")
	}
	if strings.Contains(id.Owner, "/") || strings.Contains(id.Name, "/") {
		return RepositoryIdentity{}, errors.Wrapf(ErrInvalidIdentity, "owner %q and repository name %q must not contain '/'", id.Owner, id.Name)
	}
	return id, nil
}

// String returns the identity in "owner/repo" form.
func (id RepositoryIdentity) String() string {
	return id.Owner + "/" + id.Name
}

// RepositorySummary holds the repository metadata reported by a single query.
// OpenIssuesRaw is the upstream counter, which also includes pull requests.
type RepositorySummary struct {
	FullName      string `json:"full_name"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	OpenIssuesRaw int    `json:"open_issues_raw"`
}

// Contributor is a single entry of the upstream contributor list.
type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}

// StateCount is the open/closed pair for one entity kind.
type StateCount struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
}

// AnalysisReport is the consolidated result of one analysis run.
// It is only ever built from a complete set of successful queries.
type AnalysisReport struct {
	Identity     RepositoryIdentity `json:"-"`
	Summary      RepositorySummary  `json:"summary"`
	Contributors []Contributor      `json:"contributors"`
	Issues       StateCount         `json:"issues"`
	PullRequests StateCount         `json:"pull_requests"`
}

// EntityKind selects the collection a count is resolved for.
type EntityKind string

const (
	KindIssues EntityKind = "issues"
	KindPulls  EntityKind = "pulls"
)

// ItemState is the state filter applied to a collection query.
type ItemState string

const (
	StateOpen   ItemState = "open"
	StateClosed ItemState = "closed"
)
