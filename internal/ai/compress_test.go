package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompressor(t *testing.T, url, key string, timeout time.Duration) (*Compressor, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := NewCompressor(config.ScaledownConfig{APIKey: key, URL: url, Level: "medium", Timeout: timeout}, nil, metrics.New(reg))
	return c, reg
}

func TestCompressor_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))
		var req compressRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "medium", req.CompressionLevel)
		_, _ = w.Write([]byte(`{"compressed_text":"short","original_tokens":120,"compressed_tokens":40,"compression_ratio":3.0}`))
	}))
	defer srv.Close()

	c, _ := newCompressor(t, srv.URL, "sekret", time.Second)
	out := c.Compress(context.Background(), "a long context")
	assert.True(t, out.Applied)
	assert.Equal(t, "short", out.Text)
	assert.Equal(t, 120, out.OriginalTokens)
	assert.Equal(t, 3.0, out.Ratio)
}

func TestCompressor_FallsBack(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	garbled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer garbled.Close()

	cases := []struct {
		reason string
		url    string
		key    string
	}{
		{"no_key", failing.URL, ""},
		{"timeout", slow.URL, "k"},
		{"status", failing.URL, "k"},
		{"decode", garbled.URL, "k"},
	}
	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			c, reg := newCompressor(t, tc.url, tc.key, 50*time.Millisecond)
			out := c.Compress(context.Background(), "original context")
			assert.False(t, out.Applied)
			assert.Equal(t, "original context", out.Text)

			expected := `
# HELP assistant_compression_skipped_total Assistant turns sent without context compression.
# TYPE assistant_compression_skipped_total counter
assistant_compression_skipped_total{reason="` + tc.reason + `"} 1
`
			assert.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "assistant_compression_skipped_total"))
		})
	}
}
