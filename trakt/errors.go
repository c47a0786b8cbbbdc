package trakt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Kind identifies the category of an API failure. Every non-2xx response
// maps to exactly one Kind; status codes outside the documented table
// surface as KindBadResponse carrying the raw body.
type Kind int

const (
	// KindBadResponse indicates a response that could not be parsed, or a
	// status code outside the documented API table
	KindBadResponse Kind = iota
	// KindBadRequest indicates a 400 response
	KindBadRequest
	// KindUnauthorized indicates a 401 response
	KindUnauthorized
	// KindForbidden indicates a 403 response
	KindForbidden
	// KindNotFound indicates a 404 response
	KindNotFound
	// KindMethodNotAllowed indicates a 405 response
	KindMethodNotAllowed
	// KindConflict indicates a 409 response
	KindConflict
	// KindAccountLimitExceeded indicates a 420 response
	KindAccountLimitExceeded
	// KindUnprocessable indicates a 422 response
	KindUnprocessable
	// KindLockedAccount indicates a 423 response
	KindLockedAccount
	// KindRateLimitExceeded indicates a 429 response
	KindRateLimitExceeded
	// KindServerError indicates a 500 response
	KindServerError
	// KindBadGateway indicates a 502 response
	KindBadGateway
	// KindUnavailable indicates a 503 response
	KindUnavailable
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindConflict:
		return "conflict"
	case KindAccountLimitExceeded:
		return "account_limit_exceeded"
	case KindUnprocessable:
		return "unprocessable"
	case KindLockedAccount:
		return "locked_account"
	case KindRateLimitExceeded:
		return "rate_limit_exceeded"
	case KindServerError:
		return "server_error"
	case KindBadGateway:
		return "bad_gateway"
	case KindUnavailable:
		return "unavailable"
	default:
		return "bad_response"
	}
}

// message returns the default human-readable message for a Kind. The texts
// match the API documentation for each status code.
func (k Kind) message() string {
	switch k {
	case KindBadRequest:
		return "Bad Request - request couldn't be parsed"
	case KindUnauthorized:
		return "Unauthorized - OAuth must be provided"
	case KindForbidden:
		return "Forbidden - invalid API key or unapproved app"
	case KindNotFound:
		return "Not Found - method exists, but no record found"
	case KindMethodNotAllowed:
		return "Method Not Found - method doesn't exist"
	case KindConflict:
		return "Conflict - resource already created"
	case KindAccountLimitExceeded:
		return "Account Limit Exceeded - list count, item count, etc"
	case KindUnprocessable:
		return "Unprocessable Entity - validation errors"
	case KindLockedAccount:
		return "Locked User Account - have the user contact support"
	case KindRateLimitExceeded:
		return "Rate Limit Exceeded"
	case KindServerError:
		return "Internal Server Error"
	case KindBadGateway:
		return "Trakt Unavailable - Bad Gateway"
	case KindUnavailable:
		return "Trakt Unavailable - server overloaded"
	default:
		return "Bad Response - Response could not be parsed"
	}
}

// kindForStatus maps an HTTP status code to its error Kind
func kindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return KindMethodNotAllowed
	case http.StatusConflict:
		return KindConflict
	case 420:
		return KindAccountLimitExceeded
	case http.StatusUnprocessableEntity:
		return KindUnprocessable
	case http.StatusLocked:
		return KindLockedAccount
	case http.StatusTooManyRequests:
		return KindRateLimitExceeded
	case http.StatusInternalServerError:
		return KindServerError
	case http.StatusBadGateway:
		return KindBadGateway
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindBadResponse
	}
}

// RateLimit describes the x-ratelimit header attached to 420/429 responses
type RateLimit struct {
	Name      string `json:"name"`
	Period    int    `json:"period"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Until     string `json:"until"`
}

// APIError is the error returned for every non-2xx API response and for
// 2xx responses whose body could not be decoded. It retains the response
// headers and raw body so callers can inspect them.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Header     http.Header
	Body       []byte

	// RetryAfter is the retry-after header in seconds on 420/429
	// responses, defaulting to 1 when absent or non-numeric.
	RetryAfter int
	// RateLimit holds the parsed x-ratelimit header on 420/429 responses.
	// Nil when the header is absent or not valid JSON.
	RateLimit *RateLimit
	// AccountLimit is the x-account-limit header on 420 responses
	AccountLimit string
	// ServerMessage is the x-error-message header on 500 responses
	ServerMessage string
	// AuthError and AuthErrorDescription carry the token endpoint's JSON
	// error fields when an exchange or refresh is rejected.
	AuthError            string
	AuthErrorDescription string
	// Details is the raw body text when the response could not be decoded
	// or the status code is outside the documented table.
	Details string
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("trakt API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("trakt API error: %s", e.Message)
}

// IsNotFound reports whether the error is a 404
func (e *APIError) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsUnauthorized reports whether the error is a 401
func (e *APIError) IsUnauthorized() bool {
	return e.Kind == KindUnauthorized
}

// IsRateLimited reports whether the error is a 420 or 429, both of which
// carry a RetryAfter value.
func (e *APIError) IsRateLimited() bool {
	return e.Kind == KindRateLimitExceeded || e.Kind == KindAccountLimitExceeded
}

// IsServerError reports whether the error is a 5xx
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// newAPIError builds the APIError for a response, extracting the
// kind-specific metadata from headers and body. Malformed metadata never
// fails the construction, it degrades to absent fields.
func newAPIError(resp *http.Response, body []byte) *APIError {
	kind := kindForStatus(resp.StatusCode)
	apiErr := &APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    kind.message(),
		Header:     resp.Header,
		Body:       body,
	}

	switch kind {
	case KindAccountLimitExceeded:
		apiErr.AccountLimit = resp.Header.Get("x-account-limit")
		apiErr.RetryAfter = retryAfter(resp.Header)
		apiErr.RateLimit = parseRateLimit(resp.Header)
	case KindRateLimitExceeded:
		apiErr.RetryAfter = retryAfter(resp.Header)
		apiErr.RateLimit = parseRateLimit(resp.Header)
	case KindServerError:
		apiErr.ServerMessage = resp.Header.Get("x-error-message")
	case KindUnauthorized:
		// Token endpoint rejections carry a JSON body with error and
		// error_description. Regular 401s leave both empty.
		var oauthErr struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(body, &oauthErr); err == nil {
			apiErr.AuthError = oauthErr.Error
			apiErr.AuthErrorDescription = oauthErr.ErrorDescription
		}
	case KindBadResponse:
		apiErr.Details = string(body)
	}

	return apiErr
}

// badResponseError builds the APIError for a 2xx response whose body could
// not be decoded.
func badResponseError(resp *http.Response, body []byte) *APIError {
	return &APIError{
		Kind:       KindBadResponse,
		StatusCode: resp.StatusCode,
		Message:    KindBadResponse.message(),
		Header:     resp.Header,
		Body:       body,
		Details:    string(body),
	}
}

// retryAfter parses the retry-after header in seconds, defaulting to 1
// when the header is absent or non-numeric.
func retryAfter(h http.Header) int {
	v, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil {
		return 1
	}
	return v
}

// parseRateLimit decodes the x-ratelimit header JSON. Malformed or absent
// headers degrade to nil instead of failing.
func parseRateLimit(h http.Header) *RateLimit {
	raw := h.Get("x-ratelimit")
	if raw == "" {
		return nil
	}
	var rl RateLimit
	if err := json.Unmarshal([]byte(raw), &rl); err != nil {
		return nil
	}
	return &rl
}

// TransportError wraps a network-level failure (DNS, connection reset,
// timeout) that never produced an API response. It is not part of the
// status-code taxonomy.
type TransportError struct {
	Op  string
	URL string
	Err error
}

// Error returns the error message
func (e *TransportError) Error() string {
	return fmt.Sprintf("trakt: %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying transport failure
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err as an *APIError, returning nil and false when the
// chain contains none.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 API error
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsNotFound()
}

// IsUnauthorized reports whether err is a 401 API error
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsUnauthorized()
}

// IsRateLimited reports whether err is a 420 or 429 API error
func IsRateLimited(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsRateLimited()
}

// IsTransport reports whether err is a transport-level failure rather than
// an API response.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
