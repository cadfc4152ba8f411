package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, AuthModeBearer, cfg.Auth.Mode)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "@every 24h", cfg.Reaper.Schedule)
	assert.True(t, cfg.Reaper.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoad_RejectsShortPasetoKey(t *testing.T) {
	t.Setenv("PASETO_KEY", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "PASETO_KEY")
}

func TestLoad_SessionModeNeedsNoKey(t *testing.T) {
	t.Setenv("AUTH_MODE", AuthModeSession)
	t.Setenv("PASETO_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthModeSession, cfg.Auth.Mode)
}

func TestAuthConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{"jwt ok", AuthConfig{Mode: AuthModeBearer, TokenFormat: TokenFormatJWT, JWTSecret: "a-long-enough-secret"}, false},
		{"jwt short secret", AuthConfig{Mode: AuthModeBearer, TokenFormat: TokenFormatJWT, JWTSecret: "short"}, true},
		{"unknown format", AuthConfig{Mode: AuthModeBearer, TokenFormat: "macaroon"}, true},
		{"unknown mode", AuthConfig{Mode: "basic"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "wasteless", SSLMode: "disable", ChannelBinding: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wasteless sslmode=disable channel_binding=require", c.ConnectionString())
}
