package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		Port:            "8080",
		JWTSecret:       "a-development-secret-that-is-long-enough",
		TokenTTLMinutes: 70,
		DBPassword:      "password",
		Env:             "development",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token ttl", func(c *Config) { c.TokenTTLMinutes = 0 }, true},
		{"negative token ttl", func(c *Config) { c.TokenTTLMinutes = -5 }, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "change-me-in-production"
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production with default db password", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "a-production-secret-that-is-long-enough!"
			c.DBPassword = "password"
		}, true},
		{"valid production config", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "a-production-secret-that-is-long-enough!"
			c.DBPassword = "s0meth1ng-actually-strong"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigTokenTTL(t *testing.T) {
	cfg := &Config{TokenTTLMinutes: 70}
	assert.Equal(t, 70*time.Minute, cfg.TokenTTL())
}
