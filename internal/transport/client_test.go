package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/pkg/errors"
)

func TestGetBytesSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cssmap-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"results":[{"shortname":"css2"}]}`))
	}))
	defer server.Close()

	client := New("webref", WithUserAgent("cssmap-test/1.0"))

	body, err := client.GetBytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[{"shortname":"css2"}]}`, string(body))
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, errors.IsNotFound},
		{"rate limited", http.StatusTooManyRequests, errors.IsRateLimited},
		{"server error", http.StatusBadGateway, errors.IsUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			_, err := New("webref").GetBytes(context.Background(), server.URL+"/css/x.json")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "webref", apiErr.Source)
			assert.Contains(t, apiErr.Endpoint, "/css/x.json")
		})
	}
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := New("webref", WithTimeout(50*time.Millisecond)).GetBytes(context.Background(), server.URL)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
	assert.False(t, errors.IsNotFound(err))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("webref").GetBytes(ctx, "http://127.0.0.1:1/index.json")
	var resErr *errors.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, context.Canceled)
}
