package github

import (
	"net/http"
	"strconv"
	"time"

	perr "repotraffic/internal/platform/errors"
)

// GHStatusError wraps non-2xx HTTP responses from GitHub
type GHStatusError struct {
	Status int
	Body   string
	Err    error
}

// Error interface
func (e *GHStatusError) Error() string {
	if e.Body == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Body
}

// Unwrap interface
func (e *GHStatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *GHStatusError) HTTPStatus() int { return e.Status }

// rateLimit is the quota state reported on a response
type rateLimit struct {
	remaining  int
	reset      time.Time
	retryAfter int
	limited    bool
}

func parseRateHeaders(h http.Header) rateLimit {
	var rl rateLimit
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		rl.remaining = atoi(v)
		rl.limited = rl.remaining == 0
	} else {
		rl.remaining = -1
	}
	if sec := atoi(h.Get("X-RateLimit-Reset")); sec > 0 {
		rl.reset = time.Unix(int64(sec), 0).UTC()
	}
	rl.retryAfter = atoi(h.Get("Retry-After"))
	if rl.retryAfter > 0 {
		rl.limited = true
	}
	return rl
}

// wait reports how long until quota returns based on headers
func (rl rateLimit) wait(now time.Time) time.Duration {
	if rl.retryAfter > 0 {
		return time.Duration(rl.retryAfter) * time.Second
	}
	if rl.remaining == 0 && !rl.reset.IsZero() && rl.reset.After(now) {
		return rl.reset.Sub(now)
	}
	return 0
}

// statusCode maps a response status onto an error code.
// GitHub answers 403 both for exhausted quota and for missing push access
func statusCode(status int, rl rateLimit) perr.ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case status == http.StatusForbidden && rl.limited:
		return perr.ErrorCodeTooManyRequests
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return perr.ErrorCodeUnauthorized
	case status == http.StatusNotFound:
		return perr.ErrorCodeNotFound
	default:
		return perr.ErrorCodeUnavailable
	}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}
