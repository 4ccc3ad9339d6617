package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:           "0.0.0.0",
		maxMessageSize: 65536,
		nameCacheTTL:   10 * time.Minute,
		port:           8080,
		roomTimeout:    time.Hour,
		storeTimeout:   3 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "tls pair", mutate: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "cert without key", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: true},
		{name: "key without cert", mutate: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: true},
		{name: "port zero", mutate: func(c *Config) { c.port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.port = 65536 }, wantErr: true},
		{name: "zero message size", mutate: func(c *Config) { c.maxMessageSize = 0 }, wantErr: true},
		{name: "negative cache ttl", mutate: func(c *Config) { c.nameCacheTTL = -time.Second }, wantErr: true},
		{name: "reaper disabled", mutate: func(c *Config) { c.roomTimeout = 0 }},
		{name: "negative room timeout", mutate: func(c *Config) { c.roomTimeout = -time.Minute }, wantErr: true},
		{name: "zero store timeout", mutate: func(c *Config) { c.storeTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Scheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, int64(65536), cfg.maxMessageSize)
	assert.Equal(t, 10*time.Minute, cfg.nameCacheTTL)
	assert.Equal(t, 60*time.Minute, cfg.roomTimeout)
	assert.Equal(t, 3*time.Second, cfg.storeTimeout)
	assert.Empty(t, cfg.databaseURL)
	assert.Empty(t, cfg.redisURL)
	assert.NoError(t, cfg.validate())
}

func TestNewCmd_Environment(t *testing.T) {
	t.Setenv("PUZZLEBOX_PORT", "9090")
	t.Setenv("PUZZLEBOX_ROOM_TIMEOUT", "5m")
	t.Setenv("PUZZLEBOX_DATABASE_URL", "postgres://puzzle@localhost/puzzle")
	t.Setenv("PUZZLEBOX_VERBOSE", "true")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 5*time.Minute, cfg.roomTimeout)
	assert.Equal(t, "postgres://puzzle@localhost/puzzle", cfg.databaseURL)
	assert.True(t, cfg.verbose)
}

func TestNewCmd_FlagNormalization(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.Flags().Parse([]string{"--room_timeout=2m", "--max_message_size", "1024", "-p", "9000"}))

	assert.Equal(t, 2*time.Minute, cfg.roomTimeout)
	assert.Equal(t, int64(1024), cfg.maxMessageSize)
	assert.Equal(t, 9000, cfg.port)
}
