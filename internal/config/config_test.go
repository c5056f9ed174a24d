package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "ENV", "LOG_LEVEL", "MIGRATIONS_PATH", "HANDICAP_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, 4, cfg.HandicapWorkers)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://golf@localhost/league")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HANDICAP_WORKERS", "8")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://golf@localhost/league", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 8, cfg.HandicapWorkers)
	assert.False(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoadBadWorkersFallsBack(t *testing.T) {
	t.Setenv("HANDICAP_WORKERS", "lots")
	assert.Equal(t, 4, Load().HandicapWorkers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "development without secret",
			cfg:  Config{DatabaseURL: "postgres://x", Env: "development", HandicapWorkers: 1},
		},
		{
			name:    "missing database",
			cfg:     Config{Env: "development", HandicapWorkers: 1},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "production without secret",
			cfg:     Config{DatabaseURL: "postgres://x", Env: "production", HandicapWorkers: 1},
			wantErr: "JWT_SECRET is required when ENV=production",
		},
		{
			name:    "no workers",
			cfg:     Config{DatabaseURL: "postgres://x", Env: "development"},
			wantErr: "HANDICAP_WORKERS must be at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
