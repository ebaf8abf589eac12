package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentpkg/pkgupdate/pkg/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func fastClient(opts ...httpclient.Option) *httpclient.DefaultClient {
	opts = append([]httpclient.Option{httpclient.WithInitialInterval(time.Millisecond)}, opts...)
	return httpclient.NewDefaultClient(5*time.Second, opts...)
}

func TestDefaultClient_Get_SetsHeaders(t *testing.T) {
	t.Parallel()

	var receivedUserAgent, receivedAccept, receivedAuth string
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedAccept = r.Header.Get("Accept")
		receivedAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("Authorization", "Bearer secret")

	data, err := fastClient().Get(context.Background(), server.URL, header)

	require.NoError(t, err)
	assert.Equal(t, []byte(`{"tag_name":"v1.0.0"}`), data)
	assert.Equal(t, httpclient.UserAgent, receivedUserAgent)
	assert.Equal(t, "application/vnd.github+json", receivedAccept, "per-call header should override the default")
	assert.Equal(t, "Bearer secret", receivedAuth)
}

func TestDefaultClient_Get_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		statusCode   int
		wantAttempts int32
		wantNotFound bool
	}{
		{name: "404 is permanent", statusCode: http.StatusNotFound, wantAttempts: 1, wantNotFound: true},
		{name: "401 is permanent", statusCode: http.StatusUnauthorized, wantAttempts: 1},
		{name: "500 is retried", statusCode: http.StatusInternalServerError, wantAttempts: 3},
		{name: "429 is retried", statusCode: http.StatusTooManyRequests, wantAttempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			_, err := fastClient(httpclient.WithMaxTries(3)).Get(context.Background(), server.URL, nil)

			require.Error(t, err)
			var statusErr *httpclient.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.statusCode, statusErr.StatusCode)
			assert.Equal(t, tt.wantAttempts, attempts.Load())
			assert.Equal(t, tt.wantNotFound, httpclient.IsNotFound(err))
		})
	}
}

func TestDefaultClient_Get_RecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	data, err := fastClient().Get(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestDefaultClient_Get_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := fastClient().Get(context.Background(), "://bad-url", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request")
}

func TestDefaultClient_Get_ContextCanceled(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastClient().Get(ctx, server.URL, nil)
	require.Error(t, err)
}
