package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CredentialExtractor pulls an access token out of one request transport.
// Extractors run in order; the first hit wins. Adding a transport (for
// example a mobile client header) means appending here, not touching the
// guard.
type CredentialExtractor func(c *gin.Context) (token string, ok bool)

// DefaultExtractors is the ordered extraction chain: httpOnly cookie first,
// bearer header as the legacy fallback.
func DefaultExtractors() []CredentialExtractor {
	return []CredentialExtractor{
		FromAccessTokenCookie,
		FromBearerHeader,
	}
}

func FromAccessTokenCookie(c *gin.Context) (string, bool) {
	token, err := c.Cookie(AccessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	// Older clients stored the cookie with a Bearer prefix.
	if fields := strings.Fields(token); len(fields) == 2 && strings.EqualFold(fields[0], "bearer") {
		return fields[1], true
	}
	return token, true
}

// FromBearerHeader accepts a case-insensitive "bearer" scheme and tolerates
// extra whitespace between scheme and token.
func FromBearerHeader(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", false
	}
	return fields[1], true
}
