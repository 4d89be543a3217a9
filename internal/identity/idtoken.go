package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenVerifier checks Google ID tokens against the issuer's published
// signing keys. Keys are discovered through the OpenID configuration document
// and cached for an hour; an unknown kid forces one refresh before failing.
type IDTokenVerifier struct {
	issuer     string
	clientID   string
	httpClient *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// NewIDTokenVerifier builds a verifier for the given issuer and OAuth client.
func NewIDTokenVerifier(issuer, clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{
		issuer:     issuer,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// Verify validates signature, issuer, audience and expiry, and returns the
// profile claims.
func (v *IDTokenVerifier) Verify(ctx context.Context, raw string) (Profile, error) {
	var claims struct {
		jwt.RegisteredClaims
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	keyfunc := func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		key, err := v.keyFor(ctx, kid)
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	_, err := jwt.ParseWithClaims(raw, &claims, keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Profile{}, err
	}
	if claims.Subject == "" {
		return Profile{}, errors.New("id token missing subject")
	}

	return Profile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (v *IDTokenVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetched) < time.Hour
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

type jwksDocument struct {
	Keys []struct {
		Kid string `json:"kid"`
		Kty string `json:"kty"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *IDTokenVerifier) refresh(ctx context.Context) error {
	jwksURI, err := v.discoverJWKSURI(ctx)
	if err != nil {
		return err
	}

	var doc jwksDocument
	if err := v.getJSON(ctx, jwksURI, &doc); err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks document contained no usable keys")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetched = time.Now()
	v.mu.Unlock()
	return nil
}

func (v *IDTokenVerifier) discoverJWKSURI(ctx context.Context) (string, error) {
	var cfg struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := v.getJSON(ctx, v.issuer+"/.well-known/openid-configuration", &cfg); err != nil {
		return "", fmt.Errorf("discover openid configuration: %w", err)
	}
	if cfg.JWKSURI == "" {
		return "", errors.New("openid configuration missing jwks_uri")
	}
	return cfg.JWKSURI, nil
}

func (v *IDTokenVerifier) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	exp := 0
	for _, b := range eBytes {
		exp = exp<<8 + int(b)
	}
	if exp == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: exp}, nil
}
