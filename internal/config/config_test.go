package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	tc, err := cfg.TableConfig()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTableConfig(), tc)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	src := `
table {
  decks          = 2
  starting_stack = 500
  seed           = 42
  reshuffle      = "new_shoe"
}

server {
  address              = "0.0.0.0"
  port                 = 9090
  idle_timeout_seconds = -1
}

log {
  level = "debug"
  file  = "blackjack.log"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	tc, err := cfg.TableConfig()
	require.NoError(t, err)
	assert.Equal(t, game.TableConfig{
		Decks:         2,
		StartingStack: game.WholeChips(500),
		Reshuffle:     game.ReshuffleNewShoe,
	}, tc)
	assert.Equal(t, int64(42), cfg.Table.Seed)
	assert.Equal(t, "0.0.0.0:9090", cfg.ServerAddress())
	assert.Equal(t, time.Duration(0), cfg.IdleTimeout())
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "blackjack.log", cfg.Log.File)
}

func TestParsePartialFile(t *testing.T) {
	cfg, err := Parse([]byte(`table { starting_stack = 0 }`), "partial.hcl")
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Table.Decks)
	require.NotNil(t, cfg.Table.StartingStack)
	assert.Equal(t, int64(0), *cfg.Table.StartingStack, "an explicit zero stack is kept")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `table {`},
		{"unknown attribute", `table { jokers = true }`},
		{"wrong type", `server { port = "http" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.True(t, errors.Is(err, game.ErrConfig))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too many decks", func(c *Config) { c.Table.Decks = 8 }},
		{"negative stack", func(c *Config) { s := int64(-1); c.Table.StartingStack = &s }},
		{"stack above maximum", func(c *Config) { s := int64(1_000_000); c.Table.StartingStack = &s }},
		{"reshuffle policy", func(c *Config) { c.Table.Reshuffle = "sometimes" }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, game.ErrConfig))
		})
	}
}
