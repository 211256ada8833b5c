package client

import (
	"context"
	"net/http"
)

// refreshSession rotates the session tokens, coordinating concurrent callers.
//
// Rotation invalidates the previous refresh token, so two racing refresh
// calls would guarantee one spurious logout: the loser presents a token that
// no longer exists. All concurrent callers therefore share one in-flight
// call and receive its result.
func (c *Client) refreshSession(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshCall != nil {
		inflight := c.refreshCall
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	inflight := &call{done: make(chan struct{})}
	c.refreshCall = inflight
	c.mu.Unlock()

	inflight.err = c.doRefresh(ctx)

	c.mu.Lock()
	c.refreshCall = nil
	if inflight.err == nil {
		c.state = StateAuthenticated
		// The server rotated the csrf cookie along with the tokens.
		c.csrfToken = ""
	}
	c.mu.Unlock()
	close(inflight.done)
	return inflight.err
}

// doRefresh calls the refresh endpoint directly, outside the 401 intercept,
// so a rejected refresh can never recurse into another refresh.
func (c *Client) doRefresh(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, refreshPath, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, refreshPath, nil)
}
