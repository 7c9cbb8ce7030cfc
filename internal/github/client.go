// Package github wraps the GitHub API surface the tool needs: an
// authenticated client, token resolution, and assignment repository listing.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/v81/github"
	"golang.org/x/oauth2"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	_, _ = fmt.Fprintf(t.w, "[verbose] github api: %s %s\n", req.Method, req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] github api: error after %s: %v\n", dur, err)
	} else {
		_, _ = fmt.Fprintf(t.w, "[verbose] github api: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur)
	}
	return resp, err
}

// NewClient builds an authenticated GitHub client. With verbose set, every
// API call is logged to stderr so structured output on stdout stays clean.
func NewClient(ctx context.Context, token string, verbose bool) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	transport := http.DefaultTransport
	if verbose {
		transport = &loggingRoundTripper{base: transport, w: os.Stderr}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	hc := &http.Client{Transport: transport}

	return &Client{
		Client: github.NewClient(hc),
		HTTP:   hc,
	}, nil
}
