// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/naka-gawa/repo-analyzer/internal/gateway"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Exporter persists a complete report.
type Exporter interface {
	Export(report *domain.AnalysisReport) error
}

// Aggregator is the use case for analyzing a single repository.
// It orchestrates the queries and assembles their results into one report.
type Aggregator struct {
	fetcher  gateway.Fetcher
	resolver *CountResolver
	exporter Exporter
	logger   logrus.FieldLogger
}

// NewAggregator creates a new Aggregator instance. exporter may be nil when
// reports are never exported.
func NewAggregator(fetcher gateway.Fetcher, exporter Exporter, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		resolver: NewCountResolver(fetcher, logger.WithField("component", "resolver")),
		exporter: exporter,
		logger:   logger,
	}
}

// Analyze performs the main business logic.
// Queries run one after another and the first failure aborts the run, so either a
// complete report is returned or none at all. When export is set, the complete
// report is handed to the exporter before returning.
func (a *Aggregator) Analyze(ctx context.Context, owner, repo string, export bool) (*domain.AnalysisReport, error) {
	id, err := domain.NewRepositoryIdentity(owner, repo)
	if err != nil {
		return nil, err
	}
	log := a.logger.WithField("repo", id.String())

	log.Debug("[1/4] Fetching repository info...")
	summary, err := a.fetcher.FetchRepository(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Debug("[2/4] Fetching contributors...")
	contributors, err := a.fetcher.FetchContributors(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Debug("[3/4] Counting issues...")
	issues, err := a.resolver.Resolve(ctx, id, domain.KindIssues)
	if err != nil {
		return nil, err
	}

	log.Debug("[4/4] Counting pull requests...")
	pulls, err := a.resolver.Resolve(ctx, id, domain.KindPulls)
	if err != nil {
		return nil, err
	}

	report := &domain.AnalysisReport{
		Identity:     id,
		Summary:      *summary,
		Contributors: topContributors(contributors),
		Issues:       issues,
		PullRequests: pulls,
	}
	log.Debug("Analysis complete.")

	if export {
		if a.exporter == nil {
			return report, errors.New("export requested but no exporter is configured")
		}
		if err := a.exporter.Export(report); err != nil {
			return report, errors.Wrap(err, "failed to export report")
		}
		log.Debug("Report exported.")
	}
	return report, nil
}

// topContributors keeps the first MaxContributors entries in upstream order.
func topContributors(all []domain.Contributor) []domain.Contributor {
	n := len(all)
	if n > domain.MaxContributors {
		n = domain.MaxContributors
	}
	top := make([]domain.Contributor, n)
	copy(top, all[:n])
	return top
}
