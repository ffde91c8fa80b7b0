// Package httpclient wraps http.Client with the request discipline the SEC
// hosts require: a descriptive User-Agent on every request, bounded redirects,
// and retry with backoff on transient status codes.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fintrace/insider/errors"
	"github.com/fintrace/insider/logger"
)

// Client wraps http.Client for polite EDGAR access
type Client struct {
	*http.Client
	userAgent    string
	maxRetries   int
	retryBackoff time.Duration
	maxRedirects int
}

// New creates a client. userAgent must identify the operator
// ("Name contact@example.com"); the SEC rejects anonymous requests.
func New(userAgent string, timeout time.Duration, maxRetries int) *Client {
	client := &Client{
		Client: &http.Client{
			Timeout: timeout,
		},
		userAgent:    userAgent,
		maxRetries:   maxRetries,
		retryBackoff: time.Second,
		maxRedirects: 5,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		return nil
	}

	return client
}

// Do executes a request, adding the User-Agent header and retrying on
// 429/5xx with exponential backoff. The request body must be rewindable
// via GetBody for retries to work on POSTs.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent == "" {
		return nil, errors.New("user agent not configured; SEC requires a descriptive User-Agent header")
	}
	req.Header.Set("User-Agent", c.userAgent)

	var resp *http.Response
	var err error
	backoff := c.retryBackoff

	for attempt := 0; ; attempt++ {
		resp, err = c.Client.Do(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= c.maxRetries {
			break
		}

		if err == nil {
			// Drain so the connection can be reused
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Debugw("Retrying request after retryable status",
				"url", req.URL.String(), "status", resp.StatusCode, "attempt", attempt+1)
		} else {
			logger.Debugw("Retrying request after transport error",
				"url", req.URL.String(), "error", err, "attempt", attempt+1)
		}

		select {
		case <-req.Context().Done():
			return nil, errors.Wrap(req.Context().Err(), "request cancelled during retry backoff")
		case <-time.After(backoff):
		}
		backoff *= 2

		if req.Body != nil && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, errors.Wrap(bodyErr, "failed to rewind request body for retry")
			}
			req.Body = body
		}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "request failed after %d attempts", c.maxRetries+1)
	}
	return resp, nil
}

// Get issues a GET request with context
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "invalid request URL")
	}
	return c.Do(req)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
