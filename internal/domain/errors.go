package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Outcome is the classification of one completed HTTP exchange.
type Outcome int

const (
	Success Outcome = iota
	NotFound
	RateLimited
	OtherFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NotFound:
		return "not found"
	case RateLimited:
		return "rate limited"
	default:
		return "other failure"
	}
}

// Sentinel errors matched by AnalysisError through errors.Is.
var (
	ErrNotFound     = errors.New("repository not found")
	ErrRateLimited  = errors.New("github rate limit exceeded")
	ErrOtherFailure = errors.New("github request failed")
)

// AnalysisError is the terminal failure of an analysis run.
type AnalysisError struct {
	Outcome  Outcome
	Identity RepositoryIdentity
	// Op describes the exchange that failed, e.g. "fetch contributors".
	Op  string
	Err error
}

// NewAnalysisError builds an AnalysisError. A Success outcome is coerced to OtherFailure.
func NewAnalysisError(outcome Outcome, id RepositoryIdentity, op string, err error) *AnalysisError {
	if outcome == Success {
		outcome = OtherFailure
	}
	return &AnalysisError{Outcome: outcome, Identity: id, Op: op, Err: err}
}

func (e *AnalysisError) Error() string {
	switch e.Outcome {
	case NotFound:
		return fmt.Sprintf("repository %s not found", e.Identity)
	case RateLimited:
		return fmt.Sprintf("GitHub API rate limit exceeded while querying %s (%s); please try again later", e.Identity, e.Op)
	default:
		if e.Err == nil {
			return fmt.Sprintf("failed to %s for %s", e.Op, e.Identity)
		}
		return fmt.Sprintf("failed to %s for %s: %v", e.Op, e.Identity, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's outcome.
func (e *AnalysisError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Outcome == NotFound
	case ErrRateLimited:
		return e.Outcome == RateLimited
	case ErrOtherFailure:
		return e.Outcome == OtherFailure
	}
	return false
}

// OutcomeOf returns the outcome carried by err, or OtherFailure when err is not an AnalysisError.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Success
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Outcome
	}
	return OtherFailure
}
