// Package identity maps an external Google sign-in to a stable user id. It is
// the only component allowed to resolve "who is this"; everything downstream
// takes the resolved Session as an explicit value, never ambient state.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prolink-server/internal/infra"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Profile carries the provider-reported identity fields.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session is the authenticated identity for one browser tab. It is renewed on
// each sign-in and never persisted.
type Session struct {
	UserID   string
	RawToken string
	Profile  Profile
}

// Options configures the bridge.
type Options struct {
	UserinfoURL string
	HTTPClient  *http.Client
	Verifier    *IDTokenVerifier
	Logger      *infra.Logger
}

// Bridge resolves raw OAuth tokens into Sessions.
type Bridge struct {
	userinfoURL string
	httpClient  *http.Client
	verifier    *IDTokenVerifier
	logger      infra.Logger
}

// NewBridge constructs a bridge with sane defaults.
func NewBridge(opts Options) *Bridge {
	userinfoURL := strings.TrimSpace(opts.UserinfoURL)
	if userinfoURL == "" {
		userinfoURL = defaultUserinfoURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	b := &Bridge{
		userinfoURL: userinfoURL,
		httpClient:  httpClient,
		verifier:    opts.Verifier,
	}
	if opts.Logger != nil {
		b.logger = *opts.Logger
	}
	return b
}

// SignIn fetches the user's profile with the OAuth access token and derives
// the stable user id from the provider's subject identifier.
func (b *Bridge) SignIn(ctx context.Context, accessToken string) (Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return Session{}, errors.New("identity: access token required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.userinfoURL, nil)
	if err != nil {
		return Session{}, fmt.Errorf("identity: create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("identity: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("identity: userinfo status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Session{}, fmt.Errorf("identity: decode userinfo: %w", err)
	}
	if profile.Subject == "" {
		return Session{}, errors.New("identity: userinfo missing subject")
	}

	b.logger.Debug().Str("sub", profile.Subject).Msg("identity: sign-in resolved via userinfo")
	return Session{UserID: profile.Subject, RawToken: accessToken, Profile: profile}, nil
}

// SignInWithIDToken verifies a Google ID token locally instead of calling the
// userinfo endpoint. Requires a configured verifier.
func (b *Bridge) SignInWithIDToken(ctx context.Context, idToken string) (Session, error) {
	if b.verifier == nil {
		return Session{}, errors.New("identity: id token verification not configured")
	}
	profile, err := b.verifier.Verify(ctx, idToken)
	if err != nil {
		return Session{}, fmt.Errorf("identity: verify id token: %w", err)
	}
	b.logger.Debug().Str("sub", profile.Subject).Msg("identity: sign-in resolved via id token")
	return Session{UserID: profile.Subject, RawToken: idToken, Profile: profile}, nil
}
