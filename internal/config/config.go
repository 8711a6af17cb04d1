// Package config loads Blackjack settings from an HCL file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete configuration
type Config struct {
	Table  TableSettings  `hcl:"table,block"`
	Server ServerSettings `hcl:"server,block"`
	Log    LogSettings    `hcl:"log,block"`
}

// TableSettings configures a playing session
type TableSettings struct {
	Decks         int    `hcl:"decks,optional"`
	StartingStack *int64 `hcl:"starting_stack,optional"`
	Seed          int64  `hcl:"seed,optional"`
	Reshuffle     string `hcl:"reshuffle,optional"`
}

// ServerSettings contains websocket server configuration
type ServerSettings struct {
	Address            string `hcl:"address,optional"`
	Port               int    `hcl:"port,optional"`
	IdleTimeoutSeconds int    `hcl:"idle_timeout_seconds,optional"`
}

// LogSettings controls log output
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// file mirrors Config with every block optional so a partial file decodes.
type file struct {
	Table  *TableSettings  `hcl:"table,block"`
	Server *ServerSettings `hcl:"server,block"`
	Log    *LogSettings    `hcl:"log,block"`
}

const (
	defaultDecks         = 6
	defaultStartingStack = 1000
	defaultAddress       = "localhost"
	defaultPort          = 8080
	defaultIdleTimeout   = 300
	defaultLogLevel      = "info"
)

// Default returns the default configuration
func Default() *Config {
	stack := int64(defaultStartingStack)
	return &Config{
		Table: TableSettings{
			Decks:         defaultDecks,
			StartingStack: &stack,
			Reshuffle:     game.ReshuffleEndSession.String(),
		},
		Server: ServerSettings{
			Address:            defaultAddress,
			Port:               defaultPort,
			IdleTimeoutSeconds: defaultIdleTimeout,
		},
		Log: LogSettings{
			Level: defaultLogLevel,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for anything omitted.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &game.ConfigError{Reason: "failed to parse HCL file", Err: diags}
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, &game.ConfigError{Reason: "failed to decode HCL", Err: diags}
	}

	config := Default()
	if raw.Table != nil {
		config.Table = *raw.Table
	}
	if raw.Server != nil {
		config.Server = *raw.Server
	}
	if raw.Log != nil {
		config.Log = *raw.Log
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Table.Decks == 0 {
		c.Table.Decks = defaultDecks
	}
	if c.Table.StartingStack == nil {
		stack := int64(defaultStartingStack)
		c.Table.StartingStack = &stack
	}
	if c.Table.Reshuffle == "" {
		c.Table.Reshuffle = game.ReshuffleEndSession.String()
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.IdleTimeoutSeconds == 0 {
		c.Server.IdleTimeoutSeconds = defaultIdleTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate checks every setting and returns the first problem found as a
// *game.ConfigError.
func (c *Config) Validate() error {
	if c.Table.Decks < deck.MinDecks || c.Table.Decks > deck.MaxDecks {
		return &game.ConfigError{Reason: fmt.Sprintf("table: decks must be between %d and %d, got %d", deck.MinDecks, deck.MaxDecks, c.Table.Decks)}
	}
	if _, err := c.TableConfig(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &game.ConfigError{Reason: fmt.Sprintf("server: invalid port %d", c.Server.Port)}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return &game.ConfigError{Reason: "log: invalid level", Err: err}
	}
	return nil
}

// TableConfig converts the table block to engine settings.
func (c *Config) TableConfig() (game.TableConfig, error) {
	policy, err := game.ParseReshufflePolicy(c.Table.Reshuffle)
	if err != nil {
		return game.TableConfig{}, err
	}
	var stack int64
	if c.Table.StartingStack != nil {
		stack = *c.Table.StartingStack
	}
	if stack < 0 || game.WholeChips(stack) > game.MaxStack {
		return game.TableConfig{}, &game.ConfigError{Reason: fmt.Sprintf("table: starting stack must be between 0 and %s, got %d", game.MaxStack, stack)}
	}
	return game.TableConfig{
		Decks:         c.Table.Decks,
		StartingStack: game.WholeChips(stack),
		Reshuffle:     policy,
	}, nil
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns how long a websocket session may sit without input.
// A negative setting disables the timeout and yields zero.
func (c *Config) IdleTimeout() time.Duration {
	if c.Server.IdleTimeoutSeconds < 0 {
		return 0
	}
	return time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
}

// LogLevel returns the parsed log level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
