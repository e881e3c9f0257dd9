package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
)

func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func newClient(attempts int) *httpclient.DefaultClient {
	return httpclient.NewDefaultClient(2*time.Second, attempts).WithInitialInterval(time.Millisecond)
}

func TestGetSetsUserAgent(t *testing.T) {
	t.Parallel()

	var ua string
	srv := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	data, err := newClient(1).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.True(t, strings.HasPrefix(ua, "flintmeta/"), "unexpected User-Agent %q", ua)
}

func TestGetRetries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		statuses     []int
		attempts     int
		wantErr      bool
		wantStatus   int
		wantRequests int32
	}{
		{
			name:         "5xx then success",
			statuses:     []int{http.StatusBadGateway, http.StatusOK},
			attempts:     3,
			wantRequests: 2,
		},
		{
			name:         "404 is not retried",
			statuses:     []int{http.StatusNotFound, http.StatusOK},
			attempts:     3,
			wantErr:      true,
			wantStatus:   http.StatusNotFound,
			wantRequests: 1,
		},
		{
			name:         "5xx exhausts attempts",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusServiceUnavailable},
			attempts:     2,
			wantErr:      true,
			wantStatus:   http.StatusServiceUnavailable,
			wantRequests: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var requests atomic.Int32
			srv := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := requests.Add(1)
				status := tt.statuses[min(int(n)-1, len(tt.statuses)-1)]
				w.WriteHeader(status)
				_, _ = w.Write([]byte("body"))
			}))
			defer srv.Close()

			data, err := newClient(tt.attempts).Get(context.Background(), srv.URL)
			assert.Equal(t, tt.wantRequests, requests.Load())

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "body", string(data))
				return
			}

			require.Error(t, err)
			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantStatus == http.StatusNotFound, httpclient.IsNotFound(err))
		})
	}
}

func TestOpenStreamsBody(t *testing.T) {
	t.Parallel()

	srv := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<metadata/>"))
	}))
	defer srv.Close()

	body, err := newClient(1).Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "<metadata/>", string(data))
}

func TestGetCancelledContext(t *testing.T) {
	t.Parallel()

	srv := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(3).Get(ctx, srv.URL)
	assert.Error(t, err)
}

func TestHTTPErrorMessage(t *testing.T) {
	err := httpclient.NewHTTPError(http.StatusBadGateway, "https://maven.example.test/x", "502 Bad Gateway")
	assert.Equal(t, "HTTP 502 for URL https://maven.example.test/x: 502 Bad Gateway", err.Error())
}
