// Package github provides a small GitHub REST v3 client used as a Fetcher
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.github.com"
	defaultTimeout = 15 * time.Second
	defaultUA      = "repotraffic"
	apiVersion     = "2022-11-28"
)

// maxBody caps how much of a response we buffer; repository payloads are a few KiB
var maxBody int64 = 4 << 20

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Tokens rotate round robin per request
	// Empty means tokenless which is very low quota and cannot read traffic endpoints
	Tokens []string
}

// Client is a minimal GitHub REST client with token rotation
type Client struct {
	http   *http.Client
	opts   Options
	tokens []string
	cur    atomic.Int32
	log    logger.Logger
	now    func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	var toks []string
	for _, t := range o.Tokens {
		if t = strings.TrimSpace(t); t != "" {
			toks = append(toks, t)
		}
	}
	return &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		tokens: toks,
		log:    *logger.Named("github"),
		now:    time.Now,
	}
}

// getToken returns the next token in a round robin rotation
func (c *Client) getToken() string {
	n := int(c.cur.Add(1))
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[n%len(c.tokens)]
}

// Fetch performs GET <base>/<apiPath> and returns the body of a 2xx response.
// apiPath is relative, e.g. repos/octo/hello/traffic/views?per=day
func (c *Client) Fetch(ctx context.Context, apiPath string) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, apiPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", apiPath).Msg("github close body failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github read body for %s", apiPath)
	}
	if int64(len(b)) > maxBody {
		return nil, perr.Unavailablef("github body for %s exceeds %d bytes", apiPath, maxBody)
	}
	return b, nil
}

// Do issues a single request with auth and media type headers.
// Non-2xx responses are closed and returned as a coded error wrapping GHStatusError
func (c *Client) Do(ctx context.Context, method, apiPath string) (*http.Response, error) {
	url := c.opts.BaseURL + "/" + strings.TrimLeft(apiPath, "/")

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "github new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if tok := c.getToken(); tok != "" {
		req.Header.Set("Authorization", "token "+tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github request %s failed", apiPath)
	}

	// Always log lightweight response metadata
	rl := parseRateHeaders(resp.Header)
	c.log.Debug().
		Str("method", method).
		Str("path", apiPath).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int("rate_remaining", rl.remaining).
		Time("rate_reset", rl.reset).
		Int("retry_after_s", rl.retryAfter).
		Msg("github http response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	// read a small tail for diagnostics then return
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	_ = resp.Body.Close()

	gse := &GHStatusError{
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
		Err:    fmt.Errorf("github status %d", resp.StatusCode),
	}
	code := statusCode(resp.StatusCode, rl)
	if code == perr.ErrorCodeTooManyRequests {
		c.log.Warn().
			Str("path", apiPath).
			Dur("reset_in", rl.wait(c.now())).
			Msg("github rate limited")
	}
	return nil, perr.Wrapf(gse, code, "github GET %s", apiPath)
}
