// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-supervisor/pkg/types"
)

func TestNewClientSetsUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{UserAgent: "research-supervisor/test"})
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "research-supervisor/test", got)
}

func TestNewClientKeepsExplicitUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/1.0")

	resp, err := NewClient(types.HTTPConfig{UserAgent: "default/1.0"}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom/1.0", got)
}

func TestNewClientTimeout(t *testing.T) {
	assert.Zero(t, NewClient(types.HTTPConfig{}).Timeout)
	assert.Equal(t, 3*time.Second, NewClient(types.HTTPConfig{Timeout: 3 * time.Second}).Timeout)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantErr string
	}{
		{"ok", http.StatusOK, "", ""},
		{"no content", http.StatusNoContent, "", ""},
		{"unauthorized with body", http.StatusUnauthorized, "bad token", "HTTP 401: bad token"},
		{"server error without body", http.StatusBadGateway, "", "HTTP 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Body: httpBody(tt.body)}
			err := CheckStatus(resp)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.Code)
		})
	}
}

func TestCheckStatusTruncatesBody(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusInternalServerError, Body: httpBody(strings.Repeat("x", 2*maxErrorBody))}
	var se *StatusError
	require.True(t, errors.As(CheckStatus(resp), &se))
	assert.Len(t, se.Body, maxErrorBody)
}

func httpBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
