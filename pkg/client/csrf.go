package client

import (
	"context"
	"net/http"

	"fitfest/pkg/model"
)

// getCSRFToken returns the cached double-submit token, fetching it on first
// use. Concurrent callers during a fetch await the same pending call rather
// than issuing duplicates.
func (c *Client) getCSRFToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.csrfToken != "" {
		token := c.csrfToken
		c.mu.Unlock()
		return token, nil
	}
	if c.csrfCall != nil {
		inflight := c.csrfCall
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.value, inflight.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	inflight := &call{done: make(chan struct{})}
	c.csrfCall = inflight
	c.mu.Unlock()

	inflight.value, inflight.err = c.fetchCSRFToken(ctx)

	c.mu.Lock()
	c.csrfCall = nil
	if inflight.err == nil {
		c.csrfToken = inflight.value
	}
	c.mu.Unlock()
	close(inflight.done)
	return inflight.value, inflight.err
}

// invalidateCSRFToken drops the cache; the server rotates the csrf cookie on
// every session issue, and a stale header would fail the double-submit check.
func (c *Client) invalidateCSRFToken() {
	c.mu.Lock()
	c.csrfToken = ""
	c.mu.Unlock()
}

func (c *Client) fetchCSRFToken(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, csrfPath, nil)
	if err != nil {
		return "", err
	}
	var body model.CSRFTokenResponse
	if err := decodeResponse(resp, csrfPath, &body); err != nil {
		return "", err
	}
	return body.Token, nil
}
