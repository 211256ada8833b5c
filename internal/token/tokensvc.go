package tokensvc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"fitfest/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CreateAccessToken signs a stateless HS256 access token. Validity is purely
// cryptographic plus expiry; there is no server-side record of it other than
// the logout denylist.
func CreateAccessToken(user *model.User, secret string, expiry int64) (accessToken string, err error) {
	now := time.Now()
	claimAccess := &model.JWTAccessCustomClaims{
		Identity: model.Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiry) * time.Second)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claimAccess)
	tkn, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tkn, nil
}

// ExtractCustomClaimsFromToken verifies signature and expiry and returns the
// full claim set. Expired and malformed tokens are not distinguished; callers
// treat both as Unauthorized.
func ExtractCustomClaimsFromToken(tokenString *string, secret string) (claims *model.JWTAccessCustomClaims, err error) {
	claims = &model.JWTAccessCustomClaims{}
	tkn, err := jwt.ParseWithClaims(*tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok { // check signing method
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !tkn.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

// ExtractIdentityFromToken is a convenience wrapper returning only the
// identity portion of the claims.
func ExtractIdentityFromToken(tokenString string, secret string) (identity *model.Identity, err error) {
	claims, err := ExtractCustomClaimsFromToken(&tokenString, secret)
	if err != nil {
		return nil, err
	}
	return &claims.Identity, nil
}

// MintRefreshToken mints an opaque refresh token. The wire value is
// "<sessionID>.<random>" so the server can find the session record without a
// scan; only a hash of the value is ever persisted.
func MintRefreshToken() (sessionID, token string, err error) {
	sessionID = uuid.New().String()
	secret, err := randomToken(32)
	if err != nil {
		return "", "", err
	}
	return sessionID, sessionID + "." + secret, nil
}

// RotateRefreshToken mints a replacement token for an existing session,
// keeping the session ID so the server record stays addressable.
func RotateRefreshToken(sessionID string) (token string, err error) {
	secret, err := randomToken(32)
	if err != nil {
		return "", err
	}
	return sessionID + "." + secret, nil
}

// SplitRefreshToken recovers the session ID from a wire-format refresh token.
func SplitRefreshToken(token string) (sessionID string, err error) {
	sessionID, _, ok := strings.Cut(token, ".")
	if !ok || sessionID == "" {
		return "", fmt.Errorf("malformed refresh token")
	}
	return sessionID, nil
}

// MintCSRFToken mints the opaque double-submit value.
func MintCSRFToken() (string, error) {
	return randomToken(32)
}

// HashToken returns the hex SHA-256 of a token value for persistence.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
