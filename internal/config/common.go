package config

import (
	"crypto/tls"
	"time"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int           // Number of retries for failed requests
	RetryWaitTime    time.Duration // Wait time between retries
	RetryMaxWaitTime time.Duration // Maximum wait time for retries
	Timeout          time.Duration // Timeout for requests
	TLSClientConfig  *tls.Config
	Proxy            string // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       5,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// HTTPConfig merges the http_client section over DefaultHTTPConfig.
func (c *Config) HTTPConfig() RestyHTTPClientConfig {
	base := DefaultHTTPConfig()
	if c == nil {
		return RestyHTTPClientConfig{BaseHTTPConfig: base}
	}

	h := c.HTTPClient
	base.RetryCount = SetThen(h.RetryCount, base.RetryCount)
	base.RetryWaitTime = SetThen(h.RetryWaitTime, base.RetryWaitTime)
	base.RetryMaxWaitTime = SetThen(h.RetryMaxWaitTime, base.RetryMaxWaitTime)
	base.Timeout = SetThen(h.Timeout, base.Timeout)
	base.TLSClientConfig.InsecureSkipVerify = !GetBoolValue(c, "HTTPClient.TLSClientConfig.Verify", true)
	if h.Proxy.Host != "" && h.Proxy.Port != 0 {
		base.Proxy = proxyURL(h.Proxy)
	}

	return RestyHTTPClientConfig{
		BaseHTTPConfig: base,
		Debug:          GetBoolValue(c, "HTTPClient.Debug", false),
	}
}
