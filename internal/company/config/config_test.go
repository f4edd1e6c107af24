package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		check   func(*testing.T, *Config)
		wantErr string
	}{
		{
			name: "file overrides defaults",
			yaml: "HTTP_PORT: 9000\nTOPIC: company-events\nSHUTDOWN_TIMEOUT: 10s\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.HTTPPort)
				assert.Equal(t, "company-events", cfg.Topic)
				assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, 50051, cfg.GRPCPort, "unset keys keep defaults")
			},
		},
		{
			name: "environment overrides file",
			yaml: "HTTP_PORT: 9000\nJWT_SECRET: from-file\n",
			env: map[string]string{
				"COMPANIES_HTTP_PORT":     "9100",
				"COMPANIES_KAFKA_BROKERS": "k1:9092,k2:9092",
				"COMPANIES_DB_DRIVER":     "sqlite",
				"COMPANIES_CACHE_TTL":     "30s",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.HTTPPort)
				assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
				assert.Equal(t, "sqlite", cfg.DBDriver)
				assert.Equal(t, 30*time.Second, cfg.CacheTTL)
				assert.Equal(t, "from-file", cfg.JWTSecret, "absent variables leave file values alone")
			},
		},
		{
			name: "bare variable names are accepted",
			env:  map[string]string{"JWT_SECRET": "bare"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "bare", cfg.JWTSecret)
			},
		},
		{
			name:    "malformed yaml",
			yaml:    "HTTP_PORT: [",
			wantErr: "failed to parse config",
		},
		{
			name:    "bad environment value",
			env:     map[string]string{"COMPANIES_HTTP_PORT": "eighty"},
			wantErr: "failed to read environment",
		},
		{
			name:    "unsupported driver",
			yaml:    "DB_DRIVER: oracle\n",
			wantErr: "unsupported DB_DRIVER",
		},
		{
			name:    "negative rate limit",
			yaml:    "RATE_LIMIT: -1\n",
			wantErr: "RATE_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.yaml)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
