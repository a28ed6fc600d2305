package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	// Test server defaults
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, config.Server.IdleTimeout)
	assert.False(t, config.Server.TLSEnabled)
	assert.False(t, config.Server.TrustForwardedHeaders)

	// Test logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "stdout", config.Logging.Output)

	// Test metrics defaults
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, "/metrics", config.Metrics.Path)
	assert.Equal(t, 9090, config.Metrics.Port)

	// Test observability defaults
	assert.Equal(t, "healthdemo", config.Observability.ServiceName)
	assert.False(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, TraceExporterStdout, config.Observability.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Observability.Tracing.SampleRate)

	assert.False(t, config.Health.ShowDetails)
	assert.False(t, config.Security.RateLimit.Enabled)

	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid default config",
			mutate: func(c *Config) {},
		},
		{
			name:     "invalid port",
			mutate:   func(c *Config) { c.Server.Port = -1 },
			errorMsg: "invalid server config",
		},
		{
			name:     "empty host",
			mutate:   func(c *Config) { c.Server.Host = "" },
			errorMsg: "host cannot be empty",
		},
		{
			name:     "negative read timeout",
			mutate:   func(c *Config) { c.Server.ReadTimeout = -time.Second },
			errorMsg: "read timeout cannot be negative",
		},
		{
			name: "tls without cert",
			mutate: func(c *Config) {
				c.Server.TLSEnabled = true
				c.Server.TLSKeyFile = "key.pem"
			},
			errorMsg: "TLS cert file is required",
		},
		{
			name: "tls without key",
			mutate: func(c *Config) {
				c.Server.TLSEnabled = true
				c.Server.TLSCertFile = "cert.pem"
			},
			errorMsg: "TLS key file is required",
		},
		{
			name:     "invalid log level",
			mutate:   func(c *Config) { c.Logging.Level = "verbose" },
			errorMsg: "invalid log level",
		},
		{
			name:     "invalid log format",
			mutate:   func(c *Config) { c.Logging.Format = "xml" },
			errorMsg: "invalid log format",
		},
		{
			name:     "file output without path",
			mutate:   func(c *Config) { c.Logging.Output = "file" },
			errorMsg: "file path is required",
		},
		{
			name:     "metrics without path",
			mutate:   func(c *Config) { c.Metrics.Path = "" },
			errorMsg: "metrics path cannot be empty",
		},
		{
			name: "metrics disabled skips validation",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Path = ""
				c.Metrics.Port = 0
			},
		},
		{
			name:     "metrics port clashes with server",
			mutate:   func(c *Config) { c.Metrics.Port = c.Server.Port },
			errorMsg: "metrics port must differ",
		},
		{
			name: "unsupported trace exporter",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.Exporter = "zipkin"
			},
			errorMsg: "invalid trace exporter",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.Exporter = TraceExporterOTLP
			},
			errorMsg: "OTLP endpoint is required",
		},
		{
			name: "sample rate out of range",
			mutate: func(c *Config) {
				c.Observability.Tracing.Enabled = true
				c.Observability.Tracing.SampleRate = 1.5
			},
			errorMsg: "sample rate must be between 0 and 1",
		},
		{
			name: "rate limit with zero burst",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.BurstSize = 0
			},
			errorMsg: "burst size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestNewErrorResponse_MethodNotAllowed(t *testing.T) {
	resp := NewErrorResponse("Method not allowed", ErrorCodeMethodNotAllowed)

	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "Method not allowed", resp.Message)
	assert.Equal(t, ErrorCodeMethodNotAllowed, resp.Code)
	assert.WithinDuration(t, time.Now().UTC(), resp.Timestamp, time.Second)
}
