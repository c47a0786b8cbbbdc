package trakt

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code    int
		kind    Kind
		message string
	}{
		{400, KindBadRequest, "Bad Request - request couldn't be parsed"},
		{401, KindUnauthorized, "Unauthorized - OAuth must be provided"},
		{403, KindForbidden, "Forbidden - invalid API key or unapproved app"},
		{404, KindNotFound, "Not Found - method exists, but no record found"},
		{405, KindMethodNotAllowed, "Method Not Found - method doesn't exist"},
		{409, KindConflict, "Conflict - resource already created"},
		{420, KindAccountLimitExceeded, "Account Limit Exceeded - list count, item count, etc"},
		{422, KindUnprocessable, "Unprocessable Entity - validation errors"},
		{423, KindLockedAccount, "Locked User Account - have the user contact support"},
		{429, KindRateLimitExceeded, "Rate Limit Exceeded"},
		{500, KindServerError, "Internal Server Error"},
		{502, KindBadGateway, "Trakt Unavailable - Bad Gateway"},
		{503, KindUnavailable, "Trakt Unavailable - server overloaded"},
		// codes outside the table degrade to the generic kind
		{418, KindBadResponse, "Bad Response - Response could not be parsed"},
		{504, KindBadResponse, "Bad Response - Response could not be parsed"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.code), func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: http.Header{}}
			apiErr := newAPIError(resp, nil)

			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.code, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"absent", "", 1},
		{"numeric", "30", 30},
		{"non-numeric", "soon", 1},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Retry-After", tt.header)
			}

			resp := &http.Response{StatusCode: 429, Header: header}
			apiErr := newAPIError(resp, nil)
			assert.Equal(t, tt.expected, apiErr.RetryAfter)
		})
	}
}

func TestRateLimitDetails(t *testing.T) {
	t.Run("parsed from header", func(t *testing.T) {
		header := http.Header{}
		header.Set("x-ratelimit", `{"name":"UNAUTHED_API_GET_LIMIT","period":300,"limit":1000,"remaining":0,"until":"2026-08-25T00:24:00Z"}`)

		resp := &http.Response{StatusCode: 429, Header: header}
		apiErr := newAPIError(resp, nil)

		require.NotNil(t, apiErr.RateLimit)
		assert.Equal(t, "UNAUTHED_API_GET_LIMIT", apiErr.RateLimit.Name)
		assert.Equal(t, 300, apiErr.RateLimit.Period)
		assert.Equal(t, 1000, apiErr.RateLimit.Limit)
		assert.Equal(t, 0, apiErr.RateLimit.Remaining)
	})

	t.Run("malformed header degrades to nil", func(t *testing.T) {
		header := http.Header{}
		header.Set("x-ratelimit", "not-json")

		resp := &http.Response{StatusCode: 429, Header: header}
		apiErr := newAPIError(resp, nil)
		assert.Nil(t, apiErr.RateLimit)
	})

	t.Run("absent header degrades to nil", func(t *testing.T) {
		resp := &http.Response{StatusCode: 429, Header: http.Header{}}
		apiErr := newAPIError(resp, nil)
		assert.Nil(t, apiErr.RateLimit)
	})
}

func TestAccountLimit(t *testing.T) {
	t.Run("exposed from header", func(t *testing.T) {
		header := http.Header{}
		header.Set("x-account-limit", "100")
		header.Set("Retry-After", "10")

		resp := &http.Response{StatusCode: 420, Header: header}
		apiErr := newAPIError(resp, nil)

		assert.Equal(t, KindAccountLimitExceeded, apiErr.Kind)
		assert.Equal(t, "100", apiErr.AccountLimit)
		assert.Equal(t, 10, apiErr.RetryAfter)
	})

	t.Run("defaults to empty when absent", func(t *testing.T) {
		resp := &http.Response{StatusCode: 420, Header: http.Header{}}
		apiErr := newAPIError(resp, nil)

		assert.Empty(t, apiErr.AccountLimit)
		assert.Equal(t, 1, apiErr.RetryAfter)
	})
}

func TestServerErrorMessage(t *testing.T) {
	header := http.Header{}
	header.Set("x-error-message", "the database fell over")

	resp := &http.Response{StatusCode: 500, Header: header}
	apiErr := newAPIError(resp, nil)

	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, "the database fell over", apiErr.ServerMessage)
}

func TestUnauthorizedOAuthFields(t *testing.T) {
	t.Run("token endpoint rejection", func(t *testing.T) {
		body := []byte(`{"error":"invalid_grant","error_description":"The provided authorization grant is invalid"}`)

		resp := &http.Response{StatusCode: 401, Header: http.Header{}}
		apiErr := newAPIError(resp, body)

		assert.Equal(t, "invalid_grant", apiErr.AuthError)
		assert.Equal(t, "The provided authorization grant is invalid", apiErr.AuthErrorDescription)
	})

	t.Run("plain 401 leaves fields empty", func(t *testing.T) {
		resp := &http.Response{StatusCode: 401, Header: http.Header{}}
		apiErr := newAPIError(resp, nil)

		assert.Empty(t, apiErr.AuthError)
		assert.Empty(t, apiErr.AuthErrorDescription)
	})
}

func TestUnmappedStatusCarriesBody(t *testing.T) {
	body := []byte("I'm a teapot")

	resp := &http.Response{StatusCode: 418, Header: http.Header{}}
	apiErr := newAPIError(resp, body)

	assert.Equal(t, KindBadResponse, apiErr.Kind)
	assert.Equal(t, 418, apiErr.StatusCode)
	assert.Equal(t, "I'm a teapot", apiErr.Details)
	assert.Equal(t, body, apiErr.Body)
}

func TestBadResponseError(t *testing.T) {
	body := []byte("<html>definitely not json</html>")

	resp := &http.Response{StatusCode: 200, Header: http.Header{}}
	apiErr := badResponseError(resp, body)

	assert.Equal(t, KindBadResponse, apiErr.Kind)
	assert.Equal(t, 200, apiErr.StatusCode)
	assert.Equal(t, "<html>definitely not json</html>", apiErr.Details)
}

func TestAPIErrorMessage(t *testing.T) {
	apiErr := &APIError{
		Kind:       KindNotFound,
		StatusCode: 404,
		Message:    KindNotFound.message(),
	}
	assert.Equal(t, "trakt API error: status 404: Not Found - method exists, but no record found", apiErr.Error())
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindBadRequest, "bad_request"},
		{KindUnauthorized, "unauthorized"},
		{KindNotFound, "not_found"},
		{KindAccountLimitExceeded, "account_limit_exceeded"},
		{KindRateLimitExceeded, "rate_limit_exceeded"},
		{KindBadResponse, "bad_response"},
		{Kind(99), "bad_response"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Run("through wrapped chains", func(t *testing.T) {
		apiErr := &APIError{Kind: KindNotFound, StatusCode: 404}
		wrapped := fmt.Errorf("failed to get watchlist: %w", apiErr)

		assert.True(t, IsNotFound(wrapped))
		assert.False(t, IsUnauthorized(wrapped))

		unwrapped, ok := AsAPIError(wrapped)
		require.True(t, ok)
		assert.Equal(t, apiErr, unwrapped)
	})

	t.Run("rate limited covers both limit kinds", func(t *testing.T) {
		assert.True(t, IsRateLimited(&APIError{Kind: KindRateLimitExceeded}))
		assert.True(t, IsRateLimited(&APIError{Kind: KindAccountLimitExceeded}))
		assert.False(t, IsRateLimited(&APIError{Kind: KindBadRequest}))
	})

	t.Run("transport errors stay out of the taxonomy", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		transportErr := &TransportError{Op: "GET", URL: "https://api.trakt.tv/sync/watchlist", Err: cause}

		assert.True(t, IsTransport(transportErr))
		assert.False(t, IsTransport(&APIError{Kind: KindServerError}))

		_, ok := AsAPIError(transportErr)
		assert.False(t, ok)

		assert.ErrorIs(t, transportErr, cause)
		assert.Contains(t, transportErr.Error(), "connection refused")
	})
}
