package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tokensvc "fitfest/internal/token"
	"fitfest/pkg/model"

	"github.com/alicebob/miniredis/v2"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret"

var guardTestUser = &model.User{
	ID:    "u-1",
	Email: "member@example.com",
	Role:  model.RoleMember,
}

func newGuardedEngine(t *testing.T, publicRoutes mapset.Set[string]) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	engine := gin.New()
	engine.Use(AuthMiddleware(testSecret, cache, publicRoutes))
	engine.GET("/protected", func(c *gin.Context) {
		identity, exists := c.Get("identity")
		require.True(t, exists)
		c.JSON(http.StatusOK, identity)
	})
	engine.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.Response{Msg: "ok"})
	})
	return engine
}

func noPublicRoutes() mapset.Set[string] {
	return mapset.NewSet[string]()
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	engine := newGuardedEngine(t, noPublicRoutes())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	engine := newGuardedEngine(t, noPublicRoutes())
	token, err := tokensvc.CreateAccessToken(guardTestUser, testSecret, 3600)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestAuthMiddleware_BearerFallback(t *testing.T) {
	engine := newGuardedEngine(t, noPublicRoutes())
	token, err := tokensvc.CreateAccessToken(guardTestUser, testSecret, 3600)
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer " + token,
		"bearer " + token,
		"BEARER   " + token,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		engine.ServeHTTP(w, req)

		assert.Equalf(t, http.StatusOK, w.Code, "header %q", header)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	engine := newGuardedEngine(t, noPublicRoutes())
	token, err := tokensvc.CreateAccessToken(guardTestUser, testSecret, -10)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	engine.ServeHTTP(w, req)

	// Expired and invalid answer identically.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_TamperedToken(t *testing.T) {
	engine := newGuardedEngine(t, noPublicRoutes())
	token, err := tokensvc.CreateAccessToken(guardTestUser, "other-secret", 3600)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_PublicBypass(t *testing.T) {
	public := mapset.NewSet(RouteKey(http.MethodGet, "/open"))
	engine := newGuardedEngine(t, public)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	engine := gin.New()
	engine.Use(AuthMiddleware(testSecret, cache, noPublicRoutes()))
	engine.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := tokensvc.CreateAccessToken(guardTestUser, testSecret, 3600)
	require.NoError(t, err)
	claims, err := tokensvc.ExtractCustomClaimsFromToken(&token, testSecret)
	require.NoError(t, err)
	// Denylist the token ID as logout does.
	require.NoError(t, mr.Set(claims.ID, token))
	mr.SetTTL(claims.ID, time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}
