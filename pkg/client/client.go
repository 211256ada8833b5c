// Package client is the Go SDK for the fitfest API. It owns the pieces the
// server cannot enforce: transparent refresh of an expired access token with
// single-flight coordination, the one-retry rule after a refresh, CSRF header
// attachment, and forced logout when the session is beyond recovery.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"fitfest/pkg/middleware"
	"fitfest/pkg/model"
)

const (
	defaultTimeout = 15 * time.Second

	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	refreshPath  = "/auth/refresh"
	logoutPath   = "/auth/logout"
	csrfPath     = "/csrf/token"
	profilePath  = "/users/profile"
)

// SessionState is the client-observed session lifecycle.
type SessionState string

const (
	// StateAnonymous means no session has been established yet.
	StateAnonymous SessionState = "Anonymous"
	// StateAuthenticated means cookies for a live session are held.
	StateAuthenticated SessionState = "Authenticated"
	// StateUnauthenticated is entered by forced logout after a failed
	// refresh; terminal until the next login.
	StateUnauthenticated SessionState = "Unauthenticated"
)

type Options struct {
	// HTTPClient overrides the transport. A cookie jar is installed if the
	// client has none; the session lives entirely in cookies.
	HTTPClient *http.Client
	// Timeout bounds every request including refresh and CSRF fetches, so a
	// stalled server cannot wedge the auth state. Defaults to 15s.
	Timeout time.Duration
	// OnForcedLogout is invoked (once per teardown) after a failed refresh,
	// the analogue of the browser storage event that drops other tabs to
	// anonymous.
	OnForcedLogout func()
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	onLogout   func()

	mu          sync.Mutex
	state       SessionState
	refreshCall *call
	csrfCall    *call
	csrfToken   string
}

// call is one in-flight operation shared by concurrent callers.
type call struct {
	done  chan struct{}
	value string
	err   error
}

func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}
	if httpClient.Timeout == 0 {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient.Timeout = timeout
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		onLogout:   opts.OnForcedLogout,
		state:      StateAnonymous,
	}, nil
}

// State returns the client-observed session state.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s SessionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Register creates an account and establishes its session.
func (c *Client) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	var resp model.SessionResponse
	if err := c.do(ctx, http.MethodPost, registerPath, req, &resp, false); err != nil {
		return nil, err
	}
	c.invalidateCSRFToken()
	c.setState(StateAuthenticated)
	return resp.User, nil
}

// Login establishes a session; the tokens live in the cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp model.SessionResponse
	req := &model.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, loginPath, req, &resp, false); err != nil {
		return nil, err
	}
	c.invalidateCSRFToken()
	c.setState(StateAuthenticated)
	return resp.User, nil
}

// Logout ends the session server-side and locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, logoutPath, nil, nil, false)
	c.clearSession()
	c.setState(StateAnonymous)
	return err
}

// Profile fetches the authenticated user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var resp model.UserResponse
	if err := c.do(ctx, http.MethodGet, profilePath, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Do issues an arbitrary API request through the full auth pipeline. out may
// be nil when the response body is not needed.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, false)
}

// do runs one request through the pipeline. skipAuthRetry marks a retried
// request; a second 401 is then surfaced instead of looping.
func (c *Client) do(ctx context.Context, method, path string, body, out any, skipAuthRetry bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !skipAuthRetry && path != refreshPath {
		apiErr := newAPIError(resp, path)
		if rerr := c.refreshSession(ctx); rerr != nil {
			c.forceLogout()
			// Surface the original failure, not the refresh one.
			return apiErr
		}
		return c.do(ctx, method, path, body, out, true)
	}

	return decodeResponse(resp, path, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if unsafeMethod(method) && path != csrfPath {
		token, err := c.getCSRFToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch CSRF token: %w", err)
		}
		req.Header.Set(middleware.CSRFHeader, token)
	}

	return c.httpClient.Do(req)
}

func unsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// forceLogout tears the local session down after an unrecoverable refresh
// failure and broadcasts the change.
func (c *Client) forceLogout() {
	c.clearSession()
	c.setState(StateUnauthenticated)
	if c.onLogout != nil {
		c.onLogout()
	}
}

// clearSession drops cookies and the cached CSRF token.
func (c *Client) clearSession() {
	if jar, err := cookiejar.New(nil); err == nil {
		c.httpClient.Jar = jar
	}
	c.invalidateCSRFToken()
}

func decodeResponse(resp *http.Response, path string, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIErrorOpen(resp, path)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func newAPIError(resp *http.Response, path string) *APIError {
	defer resp.Body.Close()
	return newAPIErrorOpen(resp, path)
}

func newAPIErrorOpen(resp *http.Response, path string) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{
		Status:   resp.StatusCode,
		Endpoint: path,
		Body:     string(body),
	}
}
