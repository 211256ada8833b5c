package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fitfest/pkg/middleware"
	"fitfest/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal server standing in for the backend: it serves the CSRF
// endpoint, the refresh endpoint, and a protected profile route whose
// authorization is toggled by the test.
type fakeAPI struct {
	authorized   atomic.Bool
	refreshOK    atomic.Bool
	refreshCalls atomic.Int32
	csrfFetches  atomic.Int32
	profileCalls atomic.Int32
	refreshDelay time.Duration
	// stayUnauthorized keeps the profile route rejecting even after a
	// successful refresh, to exercise the one-retry cap.
	stayUnauthorized bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/csrf/token", func(w http.ResponseWriter, r *http.Request) {
		f.csrfFetches.Add(1)
		http.SetCookie(w, &http.Cookie{Name: middleware.CSRFTokenCookie, Value: "csrf-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(model.CSRFTokenResponse{Token: "csrf-1"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if !f.refreshOK.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(model.Response{Msg: "session expired"})
			return
		}
		if !f.stayUnauthorized {
			f.authorized.Store(true)
		}
		_ = json.NewEncoder(w).Encode(model.TokenResponse{Data: &model.TokenPair{}})
	})
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		f.profileCalls.Add(1)
		if !f.authorized.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(model.Response{Msg: "invalid or expired access token"})
			return
		}
		_ = json.NewEncoder(w).Encode(model.UserResponse{Data: &model.User{ID: "u-1", Email: "member@test.com"}})
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts)
	require.NoError(t, err)
	return c
}

func TestClient_SingleFlightRefresh(t *testing.T) {
	api := &fakeAPI{refreshDelay: 50 * time.Millisecond}
	api.refreshOK.Store(true)
	c := newTestClient(t, api, Options{})

	const concurrent = 5
	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Profile(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoErrorf(t, err, "request %d", i)
	}
	// All five 401s funneled into a single refresh call.
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestClient_RetriesExactlyOnce(t *testing.T) {
	// Refresh succeeds but the new access token is still rejected; the
	// client must surface the 401 after one retry instead of looping.
	api := &fakeAPI{stayUnauthorized: true}
	api.refreshOK.Store(true)
	c := newTestClient(t, api, Options{})

	_, err := c.Profile(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	// Original attempt plus exactly one retry.
	assert.Equal(t, int32(2), api.profileCalls.Load())
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestClient_ForcedLogoutOnRefreshFailure(t *testing.T) {
	api := &fakeAPI{}
	// refreshOK stays false: refresh is rejected.
	var logoutBroadcasts atomic.Int32
	c := newTestClient(t, api, Options{
		OnForcedLogout: func() { logoutBroadcasts.Add(1) },
	})

	_, err := c.Profile(context.Background())
	require.Error(t, err)

	// The original 401 is surfaced, not the refresh failure.
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "/users/profile", apiErr.Endpoint)

	assert.Equal(t, int32(1), logoutBroadcasts.Load())
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestClient_RefreshEndpointNeverIntercepted(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, Options{})

	// Calling refresh directly and getting a 401 must not recurse.
	err := c.Do(context.Background(), http.MethodPost, "/auth/refresh", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestClient_CSRFCacheSingleFetch(t *testing.T) {
	api := &fakeAPI{}
	api.authorized.Store(true)
	api.refreshOK.Store(true)
	c := newTestClient(t, api, Options{})

	const concurrent = 8
	var wg sync.WaitGroup
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := c.getCSRFToken(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "csrf-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.csrfFetches.Load())
}

func TestClient_UnsafeRequestsCarryCSRFHeader(t *testing.T) {
	var sawHeader atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/csrf/token", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: middleware.CSRFTokenCookie, Value: "csrf-9", Path: "/"})
		_ = json.NewEncoder(w).Encode(model.CSRFTokenResponse{Token: "csrf-9"})
	})
	mux.HandleFunc("/workouts", func(w http.ResponseWriter, r *http.Request) {
		sawHeader.Store(r.Header.Get(middleware.CSRFHeader))
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	err = c.Do(context.Background(), http.MethodPost, "/workouts", map[string]string{"name": "Leg day"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "csrf-9", sawHeader.Load())
}

func TestClient_StateTransitions(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, Options{})
	assert.Equal(t, StateAnonymous, c.State())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", Options{})
	assert.Error(t, err)
}
