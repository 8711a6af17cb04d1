package main

import (
	"fmt"
	"os"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays many sessions with the built-in strategy
type SimulateCmd struct {
	TableFlags
	Sessions int           `default:"100" help:"Number of sessions to simulate"`
	Rounds   int           `default:"1000" help:"Maximum rounds per session"`
	Bet      string        `default:"10" help:"Flat bet per round, in whole chips"`
	Workers  int           `default:"4" help:"Sessions to play in parallel"`
	Timeout  time.Duration `default:"5m" help:"Abort the simulation after this long"`
	Output   string        `help:"Write a JSON report to this file" type:"path"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load(c.apply)
	if err != nil {
		return err
	}
	tableCfg, err := cfg.TableConfig()
	if err != nil {
		return err
	}
	bet, err := game.ParseChips(c.Bet)
	if err != nil {
		return err
	}

	logger := shared.SetupLogger(os.Stderr, cfg.LogLevel()).WithPrefix("simulate")
	seed := randutil.Seed(cfg.Table.Seed, quartz.NewReal())
	logger.Info("Starting simulation", "sessions", c.Sessions, "rounds", c.Rounds, "bet", bet, "seed", seed)

	sim := simulator.New(simulator.Config{
		Sessions: c.Sessions,
		Rounds:   c.Rounds,
		Bet:      bet,
		Table:    tableCfg,
		Seed:     seed,
		Workers:  c.Workers,
		Timeout:  c.Timeout,
		Logger:   logger,
	})
	result, err := sim.Run(shared.SetupSignalHandler(logger))
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, result)
	fmt.Printf("Seed: %d\n", seed)

	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, result.Report()); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Output)
	}
	return nil
}
