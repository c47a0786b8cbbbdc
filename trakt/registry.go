package trakt

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
)

// Options configures the process-wide default store, authenticator and
// client built by the registry accessors.
type Options struct {
	// BaseURL is the API host, defaulting to DefaultBaseURL
	BaseURL string
	// SiteURL is the web frontend, defaulting to DefaultSiteURL
	SiteURL      string
	ClientID     string
	ClientSecret string
	// RedirectURI defaults to the out-of-band URI
	RedirectURI string
	// ApplicationID identifies the registered application for the PIN flow
	ApplicationID string
	// AuthMethod selects the Init flow, defaulting to AuthMethodDevice
	AuthMethod AuthMethod
	// CredentialsFile is the on-disk credential record, defaulting to
	// .gotrakt.json in the user's home directory.
	CredentialsFile string
	HTTPClient      *http.Client
	Logger          zerolog.Logger
}

// registry memoizes the process-wide defaults so higher layers share one
// client, authenticator and store.
type registry struct {
	mu     sync.Mutex
	opts   Options
	store  *FileStore
	auth   *TokenAuth
	client *Client
}

var defaults registry

// Configure installs the options the registry accessors build from and
// drops any previously built instances so the next accessor uses the new
// options.
func Configure(opts Options) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()

	defaults.opts = opts
	defaults.store = nil
	defaults.auth = nil
	defaults.client = nil
}

// Reset drops the memoized instances while keeping the configured options.
// The next accessor rebuilds from scratch; tests use this for isolation.
func Reset() {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()

	defaults.store = nil
	defaults.auth = nil
	defaults.client = nil
}

// DefaultStore returns the memoized credential store, building it on first
// use.
func DefaultStore() (*FileStore, error) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	return defaults.storeLocked()
}

// DefaultAuth returns the memoized authenticator, building it on first use
func DefaultAuth() (*TokenAuth, error) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	return defaults.authLocked()
}

// DefaultClient returns the memoized client, building it on first use
func DefaultClient() (*Client, error) {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	return defaults.clientLocked()
}

// Init (re-)establishes credentials interactively using the configured
// auth method and returns the default client. It is the single entry point
// higher layers use to authenticate.
func Init(ctx context.Context, opts AcquireOptions) (*Client, error) {
	client, err := DefaultClient()
	if err != nil {
		return nil, err
	}

	if err := client.Auth().Acquire(ctx, opts); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *registry) storeLocked() (*FileStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	store, err := NewFileStore(r.opts.CredentialsFile)
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

func (r *registry) authLocked() (*TokenAuth, error) {
	if r.auth != nil {
		return r.auth, nil
	}

	store, err := r.storeLocked()
	if err != nil {
		return nil, err
	}

	auth, err := NewTokenAuth(AuthConfig{
		ClientID:      r.opts.ClientID,
		ClientSecret:  r.opts.ClientSecret,
		RedirectURI:   r.opts.RedirectURI,
		BaseURL:       r.opts.BaseURL,
		SiteURL:       r.opts.SiteURL,
		Method:        r.opts.AuthMethod,
		ApplicationID: r.opts.ApplicationID,
		HTTPClient:    r.opts.HTTPClient,
		Logger:        r.opts.Logger,
	}, store)
	if err != nil {
		return nil, err
	}
	r.auth = auth
	return auth, nil
}

func (r *registry) clientLocked() (*Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	auth, err := r.authLocked()
	if err != nil {
		return nil, err
	}

	var opts []Option
	if r.opts.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(r.opts.HTTPClient))
	}

	client, err := NewClient(r.opts.BaseURL, auth, r.opts.Logger, opts...)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}
