package main

import (
	"github.com/alecthomas/kong"
	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config string `help:"Path to the HCL config file" default:"blackjack.hcl" type:"path" env:"BLACKJACK_CONFIG"`
	Debug  bool   `help:"Enable debug logging" env:"BLACKJACK_DEBUG"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play Blackjack in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Serve Blackjack sessions over WebSocket"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate sessions with a fixed strategy"`
}

// load reads and validates the config file after applying overrides.
func (g *Globals) load(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TableFlags override the config file's table block
type TableFlags struct {
	Seed      *int64 `help:"Deterministic RNG seed" env:"BLACKJACK_SEED"`
	Decks     int    `help:"Decks in the shoe (1-6)" env:"BLACKJACK_DECKS"`
	Stack     *int64 `help:"Starting stack in chips" env:"BLACKJACK_STACK"`
	Reshuffle string `help:"What to do at the reshuffle point: end_session or new_shoe" env:"BLACKJACK_RESHUFFLE"`
}

func (f TableFlags) apply(cfg *config.Config) {
	if f.Seed != nil {
		cfg.Table.Seed = *f.Seed
	}
	if f.Decks != 0 {
		cfg.Table.Decks = f.Decks
	}
	if f.Stack != nil {
		cfg.Table.StartingStack = f.Stack
	}
	if f.Reshuffle != "" {
		cfg.Table.Reshuffle = f.Reshuffle
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player Blackjack against the dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
