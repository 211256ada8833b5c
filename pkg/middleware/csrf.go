package middleware

import (
	"crypto/subtle"
	"net/http"

	"fitfest/pkg/model"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
)

const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware enforces the double-submit check on unsafe methods: the
// X-CSRF-Token header must be byte-identical to the csrf_token cookie.
// Missing either value is a failure, never an implicit pass.
func CSRFMiddleware(publicRoutes mapset.Set[string]) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if isPublic(c, publicRoutes) {
			c.Next()
			return
		}

		header := c.GetHeader(CSRFHeader)
		cookie, err := c.Cookie(CSRFTokenCookie)
		if header == "" || err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, model.Response{
				Msg: "CSRF token required",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, model.Response{
				Msg: "invalid CSRF token",
			})
			return
		}

		c.Next()
	}
}
