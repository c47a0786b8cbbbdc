package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeviceCode is the device-flow handshake. UserCode is shown to the user,
// who approves it at VerificationURL while the client polls the token
// endpoint.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURL string `json:"verification_url"`
	// ExpiresIn is the handshake lifetime in seconds
	ExpiresIn int `json:"expires_in"`
	// Interval is the polling cadence in seconds
	Interval int `json:"interval"`
}

// deviceErrors maps the terminal polling statuses to their meaning
var deviceErrors = map[int]string{
	http.StatusNotFound: "invalid device code",
	http.StatusConflict: "device code already approved",
	http.StatusGone:     "device code expired, restart the process",
	http.StatusTeapot:   "device code denied",
}

// DeviceCode starts the device flow and returns the handshake to show the
// user.
func (a *TokenAuth) DeviceCode(ctx context.Context) (*DeviceCode, error) {
	url := a.baseURL + "/oauth/device/code"

	payload, err := json.Marshal(map[string]string{"client_id": a.clientID()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode device code request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create device code request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp, body)
	}

	var code DeviceCode
	if err := json.Unmarshal(body, &code); err != nil {
		return nil, badResponseError(resp, body)
	}

	return &code, nil
}

// WaitForDevice polls the device token endpoint until the user approves,
// a terminal status arrives, the handshake expires, or ctx is done. A 429
// doubles the polling interval. On approval the token pair is persisted.
func (a *TokenAuth) WaitForDevice(ctx context.Context, code *DeviceCode) error {
	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	deadline := a.now().Add(time.Duration(code.ExpiresIn) * time.Second)

	for {
		tok, status, err := a.pollDeviceToken(ctx, code.DeviceCode)
		if err != nil {
			return err
		}

		switch status {
		case http.StatusOK:
			return a.applyToken(tok)
		case http.StatusBadRequest:
			// approval still pending
		case http.StatusTooManyRequests:
			interval *= 2
			a.logger.Debug().
				Dur("interval", interval).
				Msg("Device token endpoint asked to slow down")
		}

		if a.now().After(deadline) {
			return fmt.Errorf("device code expired, restart the process")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// pollDeviceToken runs one poll. A nil error with a non-200 status means
// keep polling (pending or slow down); terminal statuses come back as
// wrapped APIErrors carrying the device-flow meaning.
func (a *TokenAuth) pollDeviceToken(ctx context.Context, deviceCode string) (tokenResponse, int, error) {
	url := a.baseURL + "/oauth/device/token"

	a.mu.RLock()
	creds := a.creds
	a.mu.RUnlock()

	payload, err := json.Marshal(map[string]string{
		"code":          deviceCode,
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
	})
	if err != nil {
		return tokenResponse{}, 0, fmt.Errorf("failed to encode device token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return tokenResponse{}, 0, fmt.Errorf("failed to create device token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", "2")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, 0, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenResponse{}, 0, &TransportError{Op: http.MethodPost, URL: url, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var tok tokenResponse
		if err := json.Unmarshal(body, &tok); err != nil {
			return tokenResponse{}, resp.StatusCode, badResponseError(resp, body)
		}
		return tok, resp.StatusCode, nil
	case http.StatusBadRequest, http.StatusTooManyRequests:
		return tokenResponse{}, resp.StatusCode, nil
	}

	if msg, ok := deviceErrors[resp.StatusCode]; ok {
		return tokenResponse{}, resp.StatusCode, fmt.Errorf("%s: %w", msg, newAPIError(resp, body))
	}
	return tokenResponse{}, resp.StatusCode, newAPIError(resp, body)
}

// acquireDevice runs the second-screen flow end to end
func (a *TokenAuth) acquireDevice(ctx context.Context, opts AcquireOptions) error {
	code, err := a.DeviceCode(ctx)
	if err != nil {
		return err
	}

	if opts.OnDeviceCode != nil {
		opts.OnDeviceCode(code)
	}

	a.logger.Info().
		Str("user_code", code.UserCode).
		Str("verification_url", code.VerificationURL).
		Msg("Waiting for device approval")

	return a.WaitForDevice(ctx, code)
}
