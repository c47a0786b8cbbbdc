package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// AuthMethod selects the interactive credential-acquisition flow
type AuthMethod string

const (
	// AuthMethodPIN exchanges a user-entered PIN issued for a registered
	// application
	AuthMethodPIN AuthMethod = "PIN"
	// AuthMethodOAuth exchanges an authorization code pasted from the
	// browser consent page
	AuthMethodOAuth AuthMethod = "OAUTH"
	// AuthMethodDevice polls the device endpoint while the user approves
	// a short code on a second screen
	AuthMethodDevice AuthMethod = "DEVICE"
)

const (
	// DefaultSiteURL is the web frontend hosting consent and PIN pages
	DefaultSiteURL = "https://trakt.tv"
	// DefaultRedirectURI is the out-of-band redirect for installed apps
	DefaultRedirectURI = "urn:ietf:wg:oauth:2.0:oob"
)

// ErrNoRefreshToken is returned by Refresh when the current credentials
// hold no refresh token.
var ErrNoRefreshToken = errors.New("trakt: no refresh token available")

// AuthConfig carries everything TokenAuth needs to run token exchanges
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURI defaults to the out-of-band URI
	RedirectURI string
	// BaseURL is the API host, defaulting to DefaultBaseURL
	BaseURL string
	// SiteURL is the web frontend, defaulting to DefaultSiteURL
	SiteURL string
	// Method selects the Acquire flow, defaulting to AuthMethodDevice
	Method AuthMethod
	// ApplicationID identifies the registered application for the PIN page
	ApplicationID string
	HTTPClient    *http.Client
	Logger        zerolog.Logger
}

// TokenAuth owns the in-memory credential snapshot and the token
// lifecycle: issuing bearer headers, detecting expiry, refreshing through
// the token endpoint, and running the interactive acquisition flows.
// Refreshes are coalesced so concurrent callers never race the same
// refresh token.
type TokenAuth struct {
	mu    sync.RWMutex
	creds Credentials

	store       CredentialStore
	httpClient  *http.Client
	baseURL     string
	siteURL     string
	redirectURI string
	method      AuthMethod
	appID       string
	logger      zerolog.Logger

	refreshGroup singleflight.Group
	now          func() time.Time
}

// NewTokenAuth creates an authenticator backed by the given store. Stored
// credentials are loaded immediately; a client id or secret in cfg
// overrides the stored one.
func NewTokenAuth(cfg AuthConfig, store CredentialStore) (*TokenAuth, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}

	creds, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if cfg.ClientID != "" {
		creds.ClientID = cfg.ClientID
	}
	if cfg.ClientSecret != "" {
		creds.ClientSecret = cfg.ClientSecret
	}
	if creds.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if cfg.Method == "" {
		cfg.Method = AuthMethodDevice
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &TokenAuth{
		creds:       creds,
		store:       store,
		httpClient:  cfg.HTTPClient,
		baseURL:     trimBaseURL(cfg.BaseURL),
		siteURL:     trimBaseURL(cfg.SiteURL),
		redirectURI: cfg.RedirectURI,
		method:      cfg.Method,
		appID:       cfg.ApplicationID,
		logger:      cfg.Logger,
		now:         time.Now,
	}, nil
}

// Method returns the configured acquisition flow
func (a *TokenAuth) Method() AuthMethod {
	return a.method
}

// Credentials returns a copy of the current snapshot
func (a *TokenAuth) Credentials() Credentials {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds
}

// AuthHeader returns the Authorization bearer value when a usable,
// unexpired token is present. ok is false when the caller must refresh or
// acquire first.
func (a *TokenAuth) AuthHeader() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.creds.Expired(a.now()) {
		return "", false
	}
	return "Bearer " + a.creds.AccessToken, true
}

// Expired reports whether the current token is absent, missing an expiry,
// or at/past it.
func (a *TokenAuth) Expired() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Expired(a.now())
}

// CanRefresh reports whether a refresh token is available
func (a *TokenAuth) CanRefresh() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.RefreshToken != ""
}

// clientID returns the current client id
func (a *TokenAuth) clientID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.ClientID
}

// Refresh exchanges the refresh token for a fresh token pair and persists
// the result. Concurrent callers coalesce into a single exchange; callers
// that queued behind a completed refresh return without exchanging again.
// A 401 from the token endpoint carries the endpoint's error and
// error_description fields on the returned APIError.
func (a *TokenAuth) Refresh(ctx context.Context) error {
	a.mu.RLock()
	stale := a.creds
	a.mu.RUnlock()

	if stale.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	_, err, _ := a.refreshGroup.Do(stale.AccessToken, func() (interface{}, error) {
		a.mu.RLock()
		current := a.creds
		a.mu.RUnlock()

		// Another caller finished a refresh while this one queued on the
		// group. Its result is still fresh, reuse it.
		if current.AccessToken != stale.AccessToken && !current.Expired(a.now()) {
			return nil, nil
		}

		a.logger.Debug().Msg("Refreshing OAuth token")

		tok, err := a.requestToken(ctx, tokenRequest{
			RefreshToken: current.RefreshToken,
			ClientID:     current.ClientID,
			ClientSecret: current.ClientSecret,
			RedirectURI:  a.redirectURI,
			GrantType:    "refresh_token",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}

		return nil, a.applyToken(tok)
	})

	return err
}

// ExchangeCode redeems an authorization code or PIN for the first token
// pair and persists it.
func (a *TokenAuth) ExchangeCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("authorization code is required")
	}

	a.mu.RLock()
	creds := a.creds
	a.mu.RUnlock()

	tok, err := a.requestToken(ctx, tokenRequest{
		Code:         code,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURI:  a.redirectURI,
		GrantType:    "authorization_code",
	})
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return a.applyToken(tok)
}

// AuthorizeURL returns the browser consent URL that yields an
// authorization code for the OAUTH flow.
func (a *TokenAuth) AuthorizeURL(state string) string {
	cfg := oauth2.Config{
		ClientID:    a.clientID(),
		RedirectURL: a.redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.siteURL + "/oauth/authorize",
			TokenURL: a.baseURL + "/oauth/token",
		},
	}
	return cfg.AuthCodeURL(state)
}

// PinURL returns the page issuing a PIN for the registered application
func (a *TokenAuth) PinURL() string {
	return fmt.Sprintf("%s/pin/%s", a.siteURL, a.appID)
}

// AcquireOptions supplies the interactive hooks the acquisition flows use
type AcquireOptions struct {
	// Code short-circuits the prompt for the PIN and OAUTH flows
	Code string
	// Prompt asks the user for a PIN or pasted authorization code
	Prompt func(message string) (string, error)
	// OnDeviceCode receives the device handshake so the caller can show
	// the user code and verification URL.
	OnDeviceCode func(code *DeviceCode)
}

// Acquire establishes fresh credentials using the configured flow and
// persists them.
func (a *TokenAuth) Acquire(ctx context.Context, opts AcquireOptions) error {
	switch a.method {
	case AuthMethodPIN:
		return a.acquireCode(ctx, opts, fmt.Sprintf("Go to %s and authorize the application. Enter the PIN: ", a.PinURL()))
	case AuthMethodOAuth:
		return a.acquireCode(ctx, opts, fmt.Sprintf("Go to %s and authorize the application. Paste the code: ", a.AuthorizeURL("")))
	case AuthMethodDevice:
		return a.acquireDevice(ctx, opts)
	default:
		return fmt.Errorf("unknown auth method %q", a.method)
	}
}

// acquireCode runs the PIN and OAUTH flows, which differ only in where the
// user fetches the code from.
func (a *TokenAuth) acquireCode(ctx context.Context, opts AcquireOptions, prompt string) error {
	code := opts.Code
	if code == "" {
		if opts.Prompt == nil {
			return fmt.Errorf("authorization code is required (no prompt available)")
		}
		entered, err := opts.Prompt(prompt)
		if err != nil {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = entered
	}

	return a.ExchangeCode(ctx, code)
}

// Clear wipes the stored tokens while keeping the client id and secret
func (a *TokenAuth) Clear() error {
	a.mu.Lock()
	a.creds.AccessToken = ""
	a.creds.RefreshToken = ""
	a.creds.ExpiresAt = 0
	creds := a.creds
	a.mu.Unlock()

	if err := a.store.Save(creds); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

// tokenRequest is the token endpoint's request payload for both the
// authorization_code and refresh_token grants.
type tokenRequest struct {
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	GrantType    string `json:"grant_type"`
}

// tokenResponse is the token endpoint's success payload
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	CreatedAt    int64  `json:"created_at"`
}

// requestToken posts a grant to the token endpoint and decodes the reply
func (a *TokenAuth) requestToken(ctx context.Context, grant tokenRequest) (tokenResponse, error) {
	url := a.baseURL + "/oauth/token"

	payload, err := json.Marshal(grant)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenResponse{}, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, newAPIError(resp, body)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return tokenResponse{}, badResponseError(resp, body)
	}

	return tok, nil
}

// applyToken installs a token response into the snapshot and persists it.
// A response without a refresh token keeps the previous one.
func (a *TokenAuth) applyToken(tok tokenResponse) error {
	createdAt := tok.CreatedAt
	if createdAt == 0 {
		createdAt = a.now().Unix()
	}

	a.mu.Lock()
	a.creds.AccessToken = tok.AccessToken
	a.creds.ExpiresAt = createdAt + tok.ExpiresIn
	if tok.RefreshToken != "" {
		a.creds.RefreshToken = tok.RefreshToken
	}
	creds := a.creds
	a.mu.Unlock()

	if err := a.store.Save(creds); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	a.logger.Debug().
		Int64("expires_at", creds.ExpiresAt).
		Msg("Stored OAuth token")

	return nil
}
