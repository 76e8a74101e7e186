package gateway

import (
	"net/http"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/pkg/errors"
)

// Classify maps the status code of a completed exchange to an Outcome.
// 404 means the entity does not exist and 403 means the request quota is exhausted.
func Classify(statusCode int) domain.Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return domain.Success
	case statusCode == http.StatusNotFound:
		return domain.NotFound
	case statusCode == http.StatusForbidden:
		return domain.RateLimited
	default:
		return domain.OtherFailure
	}
}

// ClassifyExchange classifies the result of one go-github call.
// go-github's typed rate limit errors are always RateLimited, whatever status the
// server chose, and so is a blocked re-send: the transport only asks to re-send
// after it detected a rate limit. Other errors that carry an HTTP response are
// classified by its status code; anything else (transport faults, undecodable
// 2xx payloads) is an OtherFailure.
func ClassifyExchange(resp *github.Response, err error) domain.Outcome {
	if err == nil {
		if resp != nil && resp.Response != nil {
			return Classify(resp.StatusCode)
		}
		return domain.Success
	}

	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
		blocked  *ResendBlockedError
	)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr), errors.As(err, &blocked):
		return domain.RateLimited
	case errors.As(err, &respErr) && respErr.Response != nil:
		if outcome := Classify(respErr.Response.StatusCode); outcome != domain.Success {
			return outcome
		}
	}
	return domain.OtherFailure
}
