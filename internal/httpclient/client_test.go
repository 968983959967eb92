package httpclient

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/perfscan/internal/config"
)

func TestInitializeRestyClientRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.HTTPClient.RetryCount = 3
	cfg.HTTPClient.RetryWaitTime = time.Millisecond
	cfg.HTTPClient.RetryMaxWaitTime = 2 * time.Millisecond

	client := InitializeRestyClient(hclog.NewNullLogger(), cfg)
	resp, err := client.R().Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewHTTPClient(t *testing.T) {
	cfg := config.Default()
	cfg.HTTPClient.Timeout = 3 * time.Second
	cfg.HTTPClient.Proxy = config.Proxy{Host: "http://proxy.local", Port: 3128}

	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	req, _ := http.NewRequest(http.MethodGet, "https://api.github.com", nil)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", proxy.Host)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestHclogAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug, DisableTime: true})

	adapter := NewHclogAdapter(log)
	adapter.Warnf("retrying %s after %d", "POST", 2)
	adapter.Debugf("done")

	assert.Contains(t, buf.String(), "[WARN]  retrying POST after 2")
	assert.Contains(t, buf.String(), "[DEBUG] done")
}
