package http

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientNilConfigUsesDefaults(t *testing.T) {
	client := NewHTTPClient(nil, 15*time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 15*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	defaults := DefaultClientConfig()
	assert.Equal(t, defaults.MaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, defaults.MaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.True(t, transport.ForceAttemptHTTP2)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
}

func TestEsewaClientConfigTunedForSingleHost(t *testing.T) {
	cfg := EsewaClientConfig()
	assert.Equal(t, cfg.MaxIdleConns, cfg.MaxIdleConnsPerHost)
	assert.GreaterOrEqual(t, cfg.MaxConnsPerHost, cfg.MaxIdleConnsPerHost)
	assert.False(t, cfg.InsecureSkipVerify)
}
