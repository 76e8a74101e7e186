package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/naka-gawa/repo-analyzer/internal/config"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// retryingTransport sends every request twice, the way a waiting rate limiter does.
type retryingTransport struct {
	next http.RoundTripper
}

func (t *retryingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, err := t.next.RoundTrip(req); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

func countingServer(t *testing.T, status int) (*httptest.Server, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestSendOnce_BlocksSecondRoundTrip(t *testing.T) {
	server, hits := countingServer(t, http.StatusForbidden)
	client := &http.Client{Transport: &sendOnceTransport{
		next: &retryingTransport{next: &sendOnceGuard{base: http.DefaultTransport}},
	}}

	resp, err := client.Get(server.URL)
	if resp != nil {
		resp.Body.Close()
	}

	require.Error(t, err)
	var blocked *ResendBlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, http.StatusForbidden, blocked.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestSendOnce_SeparateRequestsAreIndependent(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK)
	client := &http.Client{Transport: &sendOnceTransport{next: &sendOnceGuard{base: http.DefaultTransport}}}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(hits))
}

func TestSendOnceGuard_UntaggedRequestPassesThrough(t *testing.T) {
	server, hits := countingServer(t, http.StatusOK)
	client := &http.Client{Transport: &sendOnceGuard{base: http.DefaultTransport}}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

// TestNewGitHubGateway_SecondaryRateLimitIsNotRetried checks that a secondary
// rate limit response reaches the server once and fails the exchange, even when
// the response invites a retry.
func TestNewGitHubGateway_SecondaryRateLimitIsNotRetried(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
	}{
		{
			name:    "reset already passed",
			headers: map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": fmt.Sprint(time.Now().Add(-time.Minute).Unix())},
		},
		{
			name:    "retry after",
			headers: map[string]string{"Retry-After": "1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&hits, 1) > 3 {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				for k, v := range tc.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message":"You have exceeded a secondary rate limit.","documentation_url":"https://docs.github.com/rest/overview/rate-limits-for-the-rest-api#about-secondary-rate-limits"}`)
			}))
			defer server.Close()

			fetcher, err := NewGitHubGateway(&config.Config{APIURL: server.URL + "/", Timeout: 5 * time.Second}, discardLogger())
			require.NoError(t, err)

			started := time.Now()
			summary, err := fetcher.FetchRepository(context.Background(), testRepo)

			require.Error(t, err)
			assert.Nil(t, summary)
			assert.True(t, errors.Is(err, domain.ErrRateLimited), "unexpected error: %v", err)
			assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
			assert.Less(t, time.Since(started), time.Second)
		})
	}
}
