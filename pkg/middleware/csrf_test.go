package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCSRFEngine(publicRoutes mapset.Set[string]) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CSRFMiddleware(publicRoutes))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	engine.GET("/resource", ok)
	engine.POST("/resource", ok)
	engine.PUT("/resource", ok)
	engine.DELETE("/resource", ok)
	engine.POST("/public", ok)
	return engine
}

func csrfRequest(method string, header, cookie string) *http.Request {
	req := httptest.NewRequest(method, "/resource", nil)
	if header != "" {
		req.Header.Set(CSRFHeader, header)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: cookie})
	}
	return req
}

func TestCSRFMiddleware_SafeMethodsPass(t *testing.T) {
	engine := newCSRFEngine(mapset.NewSet[string]())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, csrfRequest(http.MethodGet, "", ""))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddleware_MatchingTokensPass(t *testing.T) {
	engine := newCSRFEngine(mapset.NewSet[string]())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, csrfRequest(method, "tok-1", "tok-1"))
		assert.Equalf(t, http.StatusOK, w.Code, "method %s", method)
	}
}

func TestCSRFMiddleware_MissingEitherFails(t *testing.T) {
	engine := newCSRFEngine(mapset.NewSet[string]())

	cases := []struct {
		name, header, cookie string
	}{
		{"missing both", "", ""},
		{"missing header", "", "tok-1"},
		{"missing cookie", "tok-1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, csrfRequest(http.MethodPost, tc.header, tc.cookie))
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "CSRF token required")
		})
	}
}

func TestCSRFMiddleware_MismatchFails(t *testing.T) {
	engine := newCSRFEngine(mapset.NewSet[string]())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, csrfRequest(http.MethodPost, "tok-1", "tok-2"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "invalid CSRF token")
}

func TestCSRFMiddleware_PublicRouteBypass(t *testing.T) {
	engine := newCSRFEngine(mapset.NewSet(RouteKey(http.MethodPost, "/public")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
