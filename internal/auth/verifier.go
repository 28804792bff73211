package auth

import (
	jwt "github.com/golang-jwt/jwt/v5"
)

// Verifier resolves bearer tokens to identities. Two trust paths are
// supported, selected by the token header's signature algorithm:
// HS256 tokens are verified against the server secret, RS256 tokens
// against the federation issuer's published keys.
type Verifier struct {
	secret     []byte
	federation *Federation
}

// NewVerifier builds the dual-path verifier. federation may be nil when
// no issuer domain is configured, in which case RS256 tokens are
// rejected.
func NewVerifier(secret []byte, federation *Federation) *Verifier {
	return &Verifier{secret: secret, federation: federation}
}

// Verify resolves a raw bearer token to the caller's identity.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrNoToken
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	switch token.Method.Alg() {
	case jwt.SigningMethodHS256.Alg():
		return verifyLocalToken(v.secret, tokenString)
	case jwt.SigningMethodRS256.Alg():
		if v.federation == nil {
			return Identity{}, ErrInvalidToken
		}
		return v.federation.Verify(tokenString)
	default:
		return Identity{}, ErrInvalidToken
	}
}
