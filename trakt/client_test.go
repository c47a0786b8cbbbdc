package trakt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient wires a client and its authenticator against the same
// test server.
func newTestClient(t *testing.T, serverURL string, creds Credentials) *Client {
	t.Helper()

	auth := newTestAuth(t, serverURL, &memStore{creds: creds})
	client, err := NewClient(serverURL, auth, zerolog.Nop())
	require.NoError(t, err)
	return client
}

// freshCreds returns credentials whose token is valid under the frozen
// test clock.
func freshCreds() Credentials {
	return Credentials{
		AccessToken:  "valid-token",
		RefreshToken: "valid-refresh",
		ExpiresAt:    testNow.Unix() + 3600,
	}
}

func TestNewClient(t *testing.T) {
	auth := newTestAuth(t, "http://localhost", &memStore{})

	t.Run("requires an authenticator", func(t *testing.T) {
		_, err := NewClient("http://localhost", nil, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authenticator is required")
	})

	t.Run("defaults to the production host", func(t *testing.T) {
		client, err := NewClient("", auth, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.BaseURL())
	})

	t.Run("trims trailing slashes", func(t *testing.T) {
		client, err := NewClient("http://example.test/", auth, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "http://example.test", client.BaseURL())
	})

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("http://example.test", auth, zerolog.Nop(), WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("http://example.test", auth, zerolog.Nop(), WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Equal(t, customClient, client.httpClient)
	})
}

func TestRequestHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "2", r.Header.Get("trakt-api-version"))
		assert.Equal(t, "test-client", r.Header.Get("trakt-api-key"))
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "gotrakt-tests", r.Header.Get("User-Agent"))

		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	auth := newTestAuth(t, server.URL, &memStore{creds: freshCreds()})
	client, err := NewClient(server.URL, auth, zerolog.Nop(), WithHeader("User-Agent", "gotrakt-tests"))
	require.NoError(t, err)

	require.NoError(t, client.Get(context.Background(), "users/settings", nil))
}

func TestRequestWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Credentials{})
	require.NoError(t, client.Get(context.Background(), "genres/movies", nil))
}

func TestProactiveRefresh(t *testing.T) {
	var exchanges, apiCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "fresh-token",
			"expires_in":    7200,
			"refresh_token": "fresh-refresh",
			"created_at":    testNow.Unix(),
		})
	})
	mux.HandleFunc("/sync/watchlist", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, Credentials{
		AccessToken:  "expired-token",
		RefreshToken: "old-refresh",
		ExpiresAt:    testNow.Unix() - 60,
	})

	var out []ListEntry
	require.NoError(t, client.Get(context.Background(), "sync/watchlist", &out))

	assert.Equal(t, int32(1), atomic.LoadInt32(&exchanges))
	assert.Equal(t, int32(1), atomic.LoadInt32(&apiCalls))
	assert.Equal(t, "fresh-token", client.Auth().Credentials().AccessToken)
}

func TestRetryAfterUnauthorized(t *testing.T) {
	var exchanges, apiCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-token",
			"expires_in":   7200,
			"created_at":   testNow.Unix(),
		})
	})
	mux.HandleFunc("/users/settings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		// the server revoked the current token even though it has not
		// expired locally
		if r.Header.Get("Authorization") == "Bearer valid-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"username": "sean"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, freshCreds())

	var out struct {
		Username string `json:"username"`
	}
	require.NoError(t, client.Get(context.Background(), "users/settings", &out))

	assert.Equal(t, "sean", out.Username)
	assert.Equal(t, int32(1), atomic.LoadInt32(&exchanges), "one refresh")
	assert.Equal(t, int32(2), atomic.LoadInt32(&apiCalls), "original attempt plus one retry")
}

func TestPersistentUnauthorized(t *testing.T) {
	var exchanges, apiCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-token",
			"expires_in":   7200,
			"created_at":   testNow.Unix(),
		})
	})
	mux.HandleFunc("/users/settings", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, freshCreds())

	err := client.Get(context.Background(), "users/settings", nil)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	assert.Equal(t, int32(1), atomic.LoadInt32(&exchanges), "retry must not loop")
	assert.Equal(t, int32(2), atomic.LoadInt32(&apiCalls))
}

func TestRefreshFailureSurfaces(t *testing.T) {
	var apiCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "The refresh token is invalid",
		})
	})
	mux.HandleFunc("/sync/watchlist", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("proactive refresh fails", func(t *testing.T) {
		atomic.StoreInt32(&apiCalls, 0)
		client := newTestClient(t, server.URL, Credentials{
			AccessToken:  "expired-token",
			RefreshToken: "dead-refresh",
			ExpiresAt:    testNow.Unix() - 60,
		})

		err := client.Get(context.Background(), "sync/watchlist", nil)
		require.Error(t, err)

		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_grant", apiErr.AuthError)
		assert.Equal(t, int32(0), atomic.LoadInt32(&apiCalls), "request must not be sent with a dead token")
	})

	t.Run("retry refresh fails", func(t *testing.T) {
		atomic.StoreInt32(&apiCalls, 0)
		client := newTestClient(t, server.URL, freshCreds())

		err := client.Get(context.Background(), "sync/watchlist", nil)
		require.Error(t, err)

		// the refresh failure wins over the original 401
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_grant", apiErr.AuthError)
		assert.Equal(t, "The refresh token is invalid", apiErr.AuthErrorDescription)
		assert.Equal(t, int32(1), atomic.LoadInt32(&apiCalls))
	})
}

func TestResponseHandling(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, freshCreds())
		assert.NoError(t, client.Delete(context.Background(), "checkin"))
	})

	t.Run("empty body with a decode target", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, freshCreds())

		var out map[string]interface{}
		assert.NoError(t, client.Get(context.Background(), "users/settings", &out))
		assert.Nil(t, out)
	})

	t.Run("unparseable success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, freshCreds())

		var out map[string]interface{}
		err := client.Get(context.Background(), "users/settings", &out)
		require.Error(t, err)

		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindBadResponse, apiErr.Kind)
		assert.Contains(t, apiErr.Details, "not json")
	})

	t.Run("api error passthrough", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, freshCreds())

		err := client.Get(context.Background(), "shows/missing", nil)
		assert.True(t, IsNotFound(err))
	})

	t.Run("transport failure", func(t *testing.T) {
		client := newTestClient(t, "http://127.0.0.1:1", freshCreds())

		err := client.Get(context.Background(), "users/settings", nil)
		assert.True(t, IsTransport(err))
	})
}

func TestRequestBody(t *testing.T) {
	t.Run("marshals the payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "value", body["key"])
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, freshCreds())
		assert.NoError(t, client.Post(context.Background(), "sync/history", map[string]string{"key": "value"}, nil))
	})

	t.Run("unencodable payload", func(t *testing.T) {
		client := newTestClient(t, "http://localhost", freshCreds())

		err := client.Post(context.Background(), "sync/history", make(chan int), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to encode request body")
	})
}
