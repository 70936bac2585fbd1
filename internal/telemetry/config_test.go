package telemetry

import (
	"testing"
	"time"

	"github.com/fyrsmithlabs/muledocd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled) // Disabled by default for users without an OTEL collector
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, "grpc", cfg.Protocol)
	assert.Equal(t, "muledocd", cfg.ServiceName)
	assert.Equal(t, "0.1.0", cfg.ServiceVersion)
	assert.True(t, cfg.Insecure) // Insecure by default for local dev
	assert.Equal(t, 1.0, cfg.Sampling.Rate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Metrics.ExportInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Timeout.Duration())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Enabled = true
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid enabled config",
			config:  valid(),
			wantErr: false,
		},
		{
			name:    "disabled config skips validation",
			config:  &Config{Enabled: false},
			wantErr: false,
		},
		{
			name: "missing endpoint",
			config: func() *Config {
				cfg := valid()
				cfg.Endpoint = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "endpoint is required",
		},
		{
			name: "missing service name",
			config: func() *Config {
				cfg := valid()
				cfg.ServiceName = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "service_name is required",
		},
		{
			name: "missing service version",
			config: func() *Config {
				cfg := valid()
				cfg.ServiceVersion = ""
				return cfg
			}(),
			wantErr: true,
			errMsg:  "service_version is required",
		},
		{
			name: "unknown protocol",
			config: func() *Config {
				cfg := valid()
				cfg.Protocol = "quic"
				return cfg
			}(),
			wantErr: true,
			errMsg:  "protocol must be",
		},
		{
			name: "insecure remote endpoint rejected",
			config: func() *Config {
				cfg := valid()
				cfg.Endpoint = "collector.example.com:4317"
				cfg.Insecure = true
				return cfg
			}(),
			wantErr: true,
			errMsg:  "insecure connections to remote endpoints",
		},
		{
			name: "secure remote endpoint allowed",
			config: func() *Config {
				cfg := valid()
				cfg.Endpoint = "collector.example.com:4317"
				cfg.Insecure = false
				return cfg
			}(),
			wantErr: false,
		},
		{
			name: "sampling rate out of range",
			config: func() *Config {
				cfg := valid()
				cfg.Sampling.Rate = 2.0
				return cfg
			}(),
			wantErr: true,
			errMsg:  "sampling.rate",
		},
		{
			name: "zero metrics interval",
			config: func() *Config {
				cfg := valid()
				cfg.Metrics.ExportInterval = config.Duration(0)
				return cfg
			}(),
			wantErr: true,
			errMsg:  "export_interval",
		},
		{
			name: "zero shutdown timeout",
			config: func() *Config {
				cfg := valid()
				cfg.Shutdown.Timeout = config.Duration(0)
				return cfg
			}(),
			wantErr: true,
			errMsg:  "shutdown.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_IsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		local    bool
	}{
		{"localhost:4317", true},
		{"127.0.0.1:4317", true},
		{"127.0.0.53:4317", true},
		{"[::1]:4317", true},
		{"::1", true},
		{"collector.example.com:4317", false},
		{"10.0.0.5:4317", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := &Config{Endpoint: tt.endpoint}
			assert.Equal(t, tt.local, cfg.isLocalEndpoint())
		})
	}
}
