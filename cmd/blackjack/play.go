package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCmd runs an interactive session in the terminal
type PlayCmd struct {
	TableFlags
	NoColor bool `help:"Disable colored output" env:"NO_COLOR"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load(c.apply)
	if err != nil {
		return err
	}
	tableCfg, err := cfg.TableConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs only go to a file
	w, closeLog, err := shared.OpenLogFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger := shared.SetupLogger(w, cfg.LogLevel()).WithPrefix("play")

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	seed := randutil.Seed(cfg.Table.Seed, quartz.NewReal())
	logger.Info("Starting session", "seed", seed, "decks", tableCfg.Decks, "stack", tableCfg.StartingStack, "reshuffle", tableCfg.Reshuffle)

	model, err := tui.New(randutil.New(seed), tableCfg, logger)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	table := model.Table()
	stats := table.Stats()
	fmt.Println(tui.HeaderStyle.Render(" Session summary "))
	fmt.Printf("Final stack: %s (seed %d)\n", table.Stack(), seed)
	if stats.Rounds > 0 {
		fmt.Println(stats.Summary())
	}
	return nil
}
