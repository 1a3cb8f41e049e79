package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrCaptchaFailed = errors.New("captcha verification failed")

const TurnstileVerifyEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// siteverifyResult is the subset of the siteverify answer we look at
type siteverifyResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// CaptchaVerifier checks Turnstile tokens posted with the public checklist form
type CaptchaVerifier struct {
	Secret   string
	Endpoint string
	// Hostname, when set, must match the host the widget was solved on
	Hostname string
	Client   *http.Client
}

// NewCaptchaVerifier builds a verifier for secret. appURL restricts tokens to its host.
func NewCaptchaVerifier(secret, appURL string) *CaptchaVerifier {
	v := &CaptchaVerifier{
		Secret:   secret,
		Endpoint: TurnstileVerifyEndpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
	if u, err := url.Parse(appURL); err == nil {
		v.Hostname = u.Hostname()
	}
	return v
}

// Verify returns nil when Cloudflare accepts token. Every rejection wraps ErrCaptchaFailed.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" || v.Secret == "" {
		return fmt.Errorf("%w: missing token or secret key", ErrCaptchaFailed)
	}

	form := url.Values{"secret": {v.Secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: siteverify unreachable: %v", ErrCaptchaFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify answered %d", ErrCaptchaFailed, resp.StatusCode)
	}

	var result siteverifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode siteverify response: %v", ErrCaptchaFailed, err)
	}

	switch {
	case !result.Success:
		return fmt.Errorf("%w, error codes: %s", ErrCaptchaFailed, strings.Join(result.ErrorCodes, ","))
	case v.Hostname != "" && !strings.EqualFold(result.Hostname, v.Hostname):
		return fmt.Errorf("%w: token issued for %q", ErrCaptchaFailed, result.Hostname)
	}
	return nil
}
