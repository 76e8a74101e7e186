// Package gateway provides a gateway to the GitHub REST API,
// abstracting away the underlying go-github client.
package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-analyzer/internal/config"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/naka-gawa/repo-analyzer/internal/pagination"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// probePageSize is the page size of a count probe. With one item per page the
// number of the last page equals the number of items.
const probePageSize = 1

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
// Every method performs exactly one HTTP exchange and returns a classified
// *domain.AnalysisError on failure.
type Fetcher interface {
	FetchRepository(ctx context.Context, id domain.RepositoryIdentity) (*domain.RepositorySummary, error)
	FetchContributors(ctx context.Context, id domain.RepositoryIdentity) ([]domain.Contributor, error)
	// ProbeCollection requests one item of the filtered collection and returns the
	// pagination links of the response.
	ProbeCollection(ctx context.Context, id domain.RepositoryIdentity, kind domain.EntityKind, state domain.ItemState) (pagination.Links, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     logrus.FieldLogger
}

var _ Fetcher = &GitHubGateway{}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway
// talking to cfg.APIURL.
func NewGitHubGateway(cfg *config.Config, logger logrus.FieldLogger) (Fetcher, error) {
	// The waiter only detects and logs secondary rate limits. It must never sleep,
	// and the guard beneath it turns any attempt to re-send into an error.
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(&sendOnceGuard{base: http.DefaultTransport},
		github_ratelimit.WithSingleSleepLimit(0, func(cbc *github_ratelimit.CallbackContext) {
			entry := logger
			if cbc != nil && cbc.Request != nil {
				entry = logger.WithField("url", cbc.Request.URL.String())
			}
			entry.Warn("secondary rate limit hit, not waiting")
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rate limit waiter")
	}
	httpClient := &http.Client{
		Transport: &sendOnceTransport{next: rateLimitWaiter},
		Timeout:   cfg.Timeout,
	}
	return newGateway(httpClient, cfg.APIURL, cfg.UserAgent, logger)
}

func newGateway(httpClient *http.Client, apiURL, userAgent string, logger logrus.FieldLogger) (*GitHubGateway, error) {
	baseURL, err := url.Parse(apiURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid api url %q", apiURL)
	}
	restClient := github.NewClient(httpClient)
	restClient.BaseURL = baseURL
	if userAgent != "" {
		restClient.UserAgent = userAgent
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

// FetchRepository fetches the repository metadata.
func (g *GitHubGateway) FetchRepository(ctx context.Context, id domain.RepositoryIdentity) (*domain.RepositorySummary, error) {
	g.logger.WithField("repo", id.String()).Debug("Fetching repository info...")
	repo, resp, err := g.restClient.Repositories.Get(ctx, id.Owner, id.Name)
	if err := g.check(id, "fetch repository info", resp, err); err != nil {
		return nil, err
	}
	return &domain.RepositorySummary{
		FullName:      repo.GetFullName(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssuesRaw: repo.GetOpenIssuesCount(),
	}, nil
}

// FetchContributors fetches the first page of contributors, in upstream order.
func (g *GitHubGateway) FetchContributors(ctx context.Context, id domain.RepositoryIdentity) ([]domain.Contributor, error) {
	g.logger.WithField("repo", id.String()).Debug("Fetching contributors...")
	contributors, resp, err := g.restClient.Repositories.ListContributors(ctx, id.Owner, id.Name, nil)
	if err := g.check(id, "fetch contributors", resp, err); err != nil {
		return nil, err
	}
	result := make([]domain.Contributor, 0, len(contributors))
	for _, c := range contributors {
		result = append(result, domain.Contributor{
			Login:         c.GetLogin(),
			Contributions: c.GetContributions(),
		})
	}
	return result, nil
}

// ProbeCollection issues a single-item request for the given collection and state.
func (g *GitHubGateway) ProbeCollection(ctx context.Context, id domain.RepositoryIdentity, kind domain.EntityKind, state domain.ItemState) (pagination.Links, error) {
	op := "count " + string(state) + " " + string(kind)
	g.logger.WithFields(logrus.Fields{"repo": id.String(), "kind": kind, "state": state}).Debug("Probing collection...")

	listOpts := github.ListOptions{PerPage: probePageSize}
	var (
		resp *github.Response
		err  error
	)
	switch kind {
	case domain.KindIssues:
		_, resp, err = g.restClient.Issues.ListByRepo(ctx, id.Owner, id.Name, &github.IssueListByRepoOptions{
			State:       string(state),
			ListOptions: listOpts,
		})
	case domain.KindPulls:
		_, resp, err = g.restClient.PullRequests.List(ctx, id.Owner, id.Name, &github.PullRequestListOptions{
			State:       string(state),
			ListOptions: listOpts,
		})
	default:
		return nil, domain.NewAnalysisError(domain.OtherFailure, id, op, errors.Errorf("unknown entity kind %q", kind))
	}
	if err := g.check(id, op, resp, err); err != nil {
		return nil, err
	}
	return pagination.ParseLinkHeader(resp.Header.Get("Link")), nil
}

// check classifies one completed exchange and turns any non-success into a
// *domain.AnalysisError.
func (g *GitHubGateway) check(id domain.RepositoryIdentity, op string, resp *github.Response, err error) error {
	outcome := ClassifyExchange(resp, err)
	if outcome == domain.Success {
		return nil
	}
	if err == nil {
		err = errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	g.logger.WithFields(logrus.Fields{
		"repo":    id.String(),
		"op":      op,
		"outcome": outcome.String(),
	}).WithError(err).Debug("Request failed")
	return domain.NewAnalysisError(outcome, id, op, err)
}
