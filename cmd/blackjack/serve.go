package main

import (
	"os"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd serves one Blackjack session per WebSocket connection
type ServeCmd struct {
	TableFlags
	Address     string         `help:"Listen address" env:"BLACKJACK_ADDRESS"`
	Port        int            `help:"Listen port" env:"BLACKJACK_PORT"`
	IdleTimeout *time.Duration `help:"Close sessions idle for this long (0 disables)" env:"BLACKJACK_IDLE_TIMEOUT"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load(func(cfg *config.Config) {
		c.apply(cfg)
		if c.Address != "" {
			cfg.Server.Address = c.Address
		}
		if c.Port != 0 {
			cfg.Server.Port = c.Port
		}
		if c.IdleTimeout != nil {
			cfg.Server.IdleTimeoutSeconds = int(c.IdleTimeout.Seconds())
			if *c.IdleTimeout == 0 {
				cfg.Server.IdleTimeoutSeconds = -1
			}
		}
	})
	if err != nil {
		return err
	}
	tableCfg, err := cfg.TableConfig()
	if err != nil {
		return err
	}

	w, closeLog, err := shared.OpenLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	if cfg.Log.File == "" {
		w = os.Stderr
	}
	logger := shared.SetupLogger(w, cfg.LogLevel())

	logger.Info("Starting Blackjack server",
		"address", cfg.ServerAddress(),
		"decks", tableCfg.Decks,
		"stack", tableCfg.StartingStack,
		"reshuffle", tableCfg.Reshuffle,
		"idle_timeout", cfg.IdleTimeout(),
	)

	srv := server.NewServer(server.Config{
		Addr:        cfg.ServerAddress(),
		Table:       tableCfg,
		Seed:        cfg.Table.Seed,
		IdleTimeout: cfg.IdleTimeout(),
		Logger:      logger,
	})
	return srv.Run(shared.SetupSignalHandler(logger))
}
