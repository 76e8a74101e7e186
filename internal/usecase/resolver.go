package usecase

import (
	"context"

	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/naka-gawa/repo-analyzer/internal/gateway"
	"github.com/naka-gawa/repo-analyzer/internal/pagination"
	"github.com/sirupsen/logrus"
)

// CountResolver determines collection sizes from pagination metadata without
// downloading the collections.
type CountResolver struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
}

// NewCountResolver creates a new CountResolver instance.
func NewCountResolver(fetcher gateway.Fetcher, logger logrus.FieldLogger) *CountResolver {
	return &CountResolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Count returns the number of items of kind in the given state.
//
// The probe requests one item per page, so the page number of the "last" link is
// the item count. Without a "last" link the count is 0: a collection holding a
// single item is reported as empty.
func (r *CountResolver) Count(ctx context.Context, id domain.RepositoryIdentity, kind domain.EntityKind, state domain.ItemState) (int, error) {
	links, err := r.fetcher.ProbeCollection(ctx, id, kind, state)
	if err != nil {
		return 0, err
	}
	last, ok := links.Last()
	if !ok {
		r.logger.WithFields(logrus.Fields{"kind": kind, "state": state}).Debug("No last link, counting as 0")
		return 0, nil
	}
	count, err := pagination.PageNumber(last.URL)
	if err != nil {
		return 0, domain.NewAnalysisError(domain.OtherFailure, id, "count "+string(state)+" "+string(kind), err)
	}
	return count, nil
}

// Resolve counts the open and then the closed items of kind.
func (r *CountResolver) Resolve(ctx context.Context, id domain.RepositoryIdentity, kind domain.EntityKind) (domain.StateCount, error) {
	open, err := r.Count(ctx, id, kind, domain.StateOpen)
	if err != nil {
		return domain.StateCount{}, err
	}
	closed, err := r.Count(ctx, id, kind, domain.StateClosed)
	if err != nil {
		return domain.StateCount{}, err
	}
	r.logger.WithFields(logrus.Fields{"kind": kind, "open": open, "closed": closed}).Debug("Resolved counts")
	return domain.StateCount{Open: open, Closed: closed}, nil
}
