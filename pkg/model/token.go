package model

// TokenPair is one issued session: a signed access token plus the opaque
// rotating refresh token that can mint its successors.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	Msg  string     `json:"msg,omitempty"`
	Data *TokenPair `json:"data"`
}

type CSRFTokenResponse struct {
	Token string `json:"token"`
}
