package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localIssuer   = "grievance-service"
	localTokenTTL = 72 * time.Hour
)

var (
	// ErrNoToken means no bearer token was presented at all.
	ErrNoToken = errors.New("no bearer token")
	// ErrInvalidToken covers signature failures, issuer mismatches and
	// structurally malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// IssueLocalToken mints an HS256 token for a locally authenticated user.
func IssueLocalToken(secret []byte, id Identity) (string, error) {
	claims := jwt.MapClaims{
		"id":    id.ID,
		"name":  id.Name,
		"email": id.Email,
		"role":  id.Role,
		"jti":   uuid.NewString(),
		"iss":   localIssuer,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(localTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verifyLocalToken checks an HS256 token against the server secret. The
// payload is trusted as-is once the signature checks out.
func verifyLocalToken(secret []byte, tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{
		ID:    stringClaim(claims, "id"),
		Name:  stringClaim(claims, "name"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}
	if id.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
