package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// ResendBlockedError is returned when a transport tries to send the same request
// a second time. StatusCode is the status of the first, and only, response.
type ResendBlockedError struct {
	StatusCode int
}

func (e *ResendBlockedError) Error() string {
	return fmt.Sprintf("request re-send blocked after status %d", e.StatusCode)
}

type attemptKey struct{}

type attempt struct {
	mu     sync.Mutex
	sent   bool
	status int
	resp   *http.Response
}

// sendOnceTransport tags every request with a fresh attempt record before
// handing it to next. Together with sendOnceGuard below next, it bounds every
// request to a single network round trip whatever next does in between.
type sendOnceTransport struct {
	next http.RoundTripper
}

func (t *sendOnceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := context.WithValue(req.Context(), attemptKey{}, &attempt{})
	return t.next.RoundTrip(req.WithContext(ctx))
}

// sendOnceGuard forwards the first round trip of a tagged request to base and
// fails every later one with a *ResendBlockedError.
type sendOnceGuard struct {
	base http.RoundTripper
}

func (g *sendOnceGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	a, ok := req.Context().Value(attemptKey{}).(*attempt)
	if !ok {
		return g.base.RoundTrip(req)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sent {
		// The first response was dropped by whoever asked for the re-send.
		if a.resp != nil && a.resp.Body != nil {
			a.resp.Body.Close()
		}
		return nil, &ResendBlockedError{StatusCode: a.status}
	}
	a.sent = true
	resp, err := g.base.RoundTrip(req)
	if resp != nil {
		a.status = resp.StatusCode
		a.resp = resp
	}
	return resp, err
}
