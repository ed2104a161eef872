package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bookmycut")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "v18.0", cfg.GraphAPIVersion)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		isProduction bool
		wantErr      bool
	}{
		{
			name:         "empty tokens allowed in development",
			cfg:          Config{},
			isProduction: false,
			wantErr:      false,
		},
		{
			name:         "missing graph token rejected in production",
			cfg:          Config{WebhookVerifyToken: "tok"},
			isProduction: true,
			wantErr:      true,
		},
		{
			name:         "missing verify token rejected in production",
			cfg:          Config{GraphAPIToken: "tok"},
			isProduction: true,
			wantErr:      true,
		},
		{
			name: "complete production config",
			cfg: Config{
				GraphAPIToken:      "tok",
				WebhookVerifyToken: "verify",
				AppSecret:          "secret",
			},
			isProduction: true,
			wantErr:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate(tc.isProduction)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
