package gateway

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		status   int
		expected domain.Outcome
	}{
		{status: http.StatusOK, expected: domain.Success},
		{status: http.StatusNoContent, expected: domain.Success},
		{status: http.StatusNotFound, expected: domain.NotFound},
		{status: http.StatusForbidden, expected: domain.RateLimited},
		{status: http.StatusUnauthorized, expected: domain.OtherFailure},
		{status: http.StatusTooManyRequests, expected: domain.OtherFailure},
		{status: http.StatusInternalServerError, expected: domain.OtherFailure},
		{status: http.StatusBadGateway, expected: domain.OtherFailure},
		{status: http.StatusMovedPermanently, expected: domain.OtherFailure},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.status))
		})
	}
}

func TestClassifyExchange(t *testing.T) {
	response := func(status int) *http.Response {
		return &http.Response{StatusCode: status}
	}

	testCases := []struct {
		name     string
		resp     *github.Response
		err      error
		expected domain.Outcome
	}{
		{
			name:     "success",
			resp:     &github.Response{Response: response(http.StatusOK)},
			expected: domain.Success,
		},
		{
			name:     "not found error response",
			err:      &github.ErrorResponse{Response: response(http.StatusNotFound), Message: "Not Found"},
			expected: domain.NotFound,
		},
		{
			name:     "forbidden error response",
			err:      &github.ErrorResponse{Response: response(http.StatusForbidden)},
			expected: domain.RateLimited,
		},
		{
			name:     "primary rate limit",
			err:      &github.RateLimitError{Response: response(http.StatusForbidden)},
			expected: domain.RateLimited,
		},
		{
			name:     "secondary rate limit",
			err:      &github.AbuseRateLimitError{Response: response(http.StatusForbidden)},
			expected: domain.RateLimited,
		},
		{
			name:     "server error",
			err:      &github.ErrorResponse{Response: response(http.StatusInternalServerError)},
			expected: domain.OtherFailure,
		},
		{
			name:     "wrapped not found",
			err:      errors.Wrap(&github.ErrorResponse{Response: response(http.StatusNotFound)}, "context"),
			expected: domain.NotFound,
		},
		{
			name:     "transport fault",
			err:      errors.New("dial tcp: connection refused"),
			expected: domain.OtherFailure,
		},
		{
			name:     "blocked re-send",
			err:      &url.Error{Op: "Get", URL: "https://api.github.com/repos/octocat/hello-world", Err: &ResendBlockedError{StatusCode: http.StatusForbidden}},
			expected: domain.RateLimited,
		},
		{
			name:     "decode failure on 2xx",
			resp:     &github.Response{Response: response(http.StatusOK)},
			err:      errors.New("invalid character '<' looking for beginning of value"),
			expected: domain.OtherFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyExchange(tc.resp, tc.err))
		})
	}
}
