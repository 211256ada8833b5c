package middleware

import (
	"net/http"

	tokensvc "fitfest/internal/token"
	"fitfest/pkg/model"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Cookie names shared by guards, controllers and the client SDK.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"
)

// RouteKey builds the public-route table entry for a method and gin route
// pattern, e.g. "POST /auth/login".
func RouteKey(method, path string) string {
	return method + " " + path
}

func isPublic(c *gin.Context, publicRoutes mapset.Set[string]) bool {
	// FullPath is empty for unmatched requests; those fail closed.
	return publicRoutes.Contains(RouteKey(c.Request.Method, c.FullPath()))
}

// AuthMiddleware verifies the access token and attaches the caller identity.
// Routes listed in publicRoutes bypass the check entirely.
func AuthMiddleware(accessSecret string, cache *redis.Client, publicRoutes mapset.Set[string], extractors ...CredentialExtractor) gin.HandlerFunc {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return func(c *gin.Context) {
		if isPublic(c, publicRoutes) {
			c.Next()
			return
		}

		var authToken string
		for _, extract := range extractors {
			if token, ok := extract(c); ok {
				authToken = token
				break
			}
		}
		if authToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
				Msg: "missing access token",
			})
			return
		}

		// Expired and malformed tokens get the same answer; both send the
		// client down the refresh path.
		claims, err := tokensvc.ExtractCustomClaimsFromToken(&authToken, accessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
				Msg: "invalid or expired access token",
			})
			return
		}

		exists, err := cache.Exists(c, claims.ID).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
				Msg: "failed to check token revocation: cache server error",
			})
			return
		}
		if exists == 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
				Msg: "token has been revoked",
			})
			return
		}

		identity := &claims.Identity
		c.Set("identity", identity)
		c.Next()
	}
}
