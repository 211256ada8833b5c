package bootstrap

type JWTEnv struct {
	AccessTokenSecret string `env:"ACCESS_SECRET" envDefault:"access-secret"`
	// The 1-day access TTL is deliberately generous for a beta product;
	// logout narrows the revocation gap by denylisting the token ID.
	AccessTokenExpiry int64 `env:"ACCESS_EXPIRY" envDefault:"86400"` // in seconds

	RefreshTokenExpiry int64 `env:"REFRESH_EXPIRY" envDefault:"2592000"` // in seconds
}
