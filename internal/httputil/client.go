// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the outbound clients.
package httputil

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

// maxErrorBody bounds how much of a failed response body is kept in an error.
const maxErrorBody = 512

// NewClient builds an *http.Client from cfg. A zero Timeout leaves the client
// unbounded; callers rely on the request context instead. When UserAgent is
// set, every request carries it unless the request sets its own.
func NewClient(cfg types.HTTPConfig) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.UserAgent != "" {
		transport = &userAgentTransport{base: transport, userAgent: cfg.UserAgent}
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// StatusError describes a non-2xx response, including the start of its body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// CheckStatus returns a *StatusError for responses outside 2xx. It reads at
// most maxErrorBody bytes of the body; closing it remains the caller's job.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: string(body)}
}
