package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("blackjack"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestDefaultCommandIsPlay(t *testing.T) {
	_, ctx := parse(t)
	assert.Equal(t, "play", ctx.Command())
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
table {
  decks          = 2
  starting_stack = 300
  seed           = 5
}
`), 0o644))

	cli, ctx := parse(t, "--config", path, "simulate", "--decks", "4", "--seed", "9", "--reshuffle", "new_shoe")
	assert.Equal(t, "simulate", ctx.Command())

	cfg, err := cli.Globals.load(cli.Simulate.apply)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Table.Decks)
	assert.Equal(t, int64(9), cfg.Table.Seed)

	tc, err := cfg.TableConfig()
	require.NoError(t, err)
	assert.Equal(t, game.WholeChips(300), tc.StartingStack)
	assert.Equal(t, game.ReshuffleNewShoe, tc.Reshuffle)
}

func TestEnvironmentFlags(t *testing.T) {
	t.Setenv("BLACKJACK_DECKS", "3")
	t.Setenv("BLACKJACK_DEBUG", "true")
	t.Setenv("BLACKJACK_CONFIG", filepath.Join(t.TempDir(), "missing.hcl"))

	cli, _ := parse(t, "serve", "--port", "9999")
	cfg, err := cli.Globals.load(cli.Serve.apply)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Table.Decks)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInvalidOverrideFailsValidation(t *testing.T) {
	cli, _ := parse(t, "--config", filepath.Join(t.TempDir(), "none.hcl"), "play", "--decks", "9")
	_, err := cli.Globals.load(cli.Play.apply)
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrConfig)
}

func TestSimulateWritesReport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	cli, ctx := parse(t, "--config", filepath.Join(dir, "none.hcl"), "simulate",
		"--sessions", "2", "--rounds", "10", "--seed", "3", "--reshuffle", "new_shoe", "--output", out)
	require.NoError(t, ctx.Run(&cli.Globals))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report simulator.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 2, report.Sessions)
	assert.Equal(t, 20, report.Rounds)
}
