package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/civigo/grievance-backend/internal/models"
)

// jwksRefreshInterval bounds how often an unknown kid triggers a
// re-fetch of the federation's published keys.
const jwksRefreshInterval = 5 * time.Minute

var errUnknownKeyID = errors.New("unknown signing key id")

// Federation verifies RS256 tokens issued by an external identity
// provider, resolving signing keys by kid from the issuer's JWKS
// endpoint with an in-memory cache.
type Federation struct {
	issuer  string // e.g. "https://tenant.example-idp.com/"
	jwksURL string
	client  *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewFederation builds a verifier for the given issuer domain (bare
// hostname, no scheme).
func NewFederation(issuerDomain string) *Federation {
	return &Federation{
		issuer:  "https://" + issuerDomain + "/",
		jwksURL: "https://" + issuerDomain + "/.well-known/jwks.json",
		client:  &http.Client{Timeout: 10 * time.Second},
		keys:    map[string]*rsa.PublicKey{},
	}
}

// Verify checks an RS256 federation token and maps its claims onto a
// local identity. The federation carries no role claim, so the role
// defaults to citizen.
func (f *Federation) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, f.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(f.issuer),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:    sub,
		Name:  stringClaim(claims, "name"),
		Email: stringClaim(claims, "email"),
		Role:  models.RoleCitizen,
	}, nil
}

func (f *Federation) keyFunc(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errUnknownKeyID
	}

	f.mu.RLock()
	key, ok := f.keys[kid]
	stale := time.Since(f.fetchedAt) > jwksRefreshInterval
	f.mu.RUnlock()
	if ok {
		return key, nil
	}
	if !stale {
		return nil, errUnknownKeyID
	}

	if err := f.refreshKeys(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	key, ok = f.keys[kid]
	f.mu.RUnlock()
	if !ok {
		return nil, errUnknownKeyID
	}
	return key, nil
}

type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (f *Federation) refreshKeys() error {
	resp, err := f.client.Get(f.jwksURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("jwks fetch failed: " + resp.Status)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKeyFromJWK(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	f.mu.Lock()
	f.keys = keys
	f.fetchedAt = time.Now()
	f.mu.Unlock()
	return nil
}

func rsaKeyFromJWK(nB64, eB64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}

// SetJWKSURL overrides the JWKS endpoint; test hook for pointing the
// verifier at a local server.
func (f *Federation) SetJWKSURL(url string) {
	f.jwksURL = url
}

// SetIssuer overrides the expected issuer claim; test hook.
func (f *Federation) SetIssuer(issuer string) {
	f.issuer = issuer
}
