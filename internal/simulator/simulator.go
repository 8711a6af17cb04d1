// Package simulator plays many Blackjack sessions with a fixed strategy and
// aggregates the results.
package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int           // Independent sessions to play
	Rounds   int           // Maximum rounds per session
	Bet      game.Chips    // Flat bet per round
	Table    game.TableConfig
	Seed     int64         // Session i is seeded with Seed+i
	Workers  int           // Sessions played concurrently; <= 0 means one
	Timeout  time.Duration // Zero means no limit
	Logger   *log.Logger
}

// Result is the outcome of a simulation run
type Result struct {
	Stats     *statistics.Statistics
	Sessions  int
	Broke     int // Sessions that ended unable to cover the bet
	Reshuffle int // Sessions ended by the shoe's reshuffle point
	Elapsed   time.Duration
}

// Simulator runs Blackjack session simulations
type Simulator struct {
	config      Config
	tableLogger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	// per-round logging is only useful when debugging
	tableLogger := config.Logger.WithPrefix("table")
	if config.Logger.GetLevel() > log.DebugLevel && config.Logger.GetLevel() < log.WarnLevel {
		tableLogger.SetLevel(log.WarnLevel)
	}
	return &Simulator{config: config, tableLogger: tableLogger}
}

type sessionResult struct {
	stats  statistics.Statistics
	reason string
}

// Run plays every session and merges their statistics in session order, so
// the result depends only on the configuration and not on scheduling.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.Sessions <= 0 || s.config.Rounds <= 0 {
		return nil, &game.ConfigError{Reason: "sessions and rounds must be positive"}
	}
	if s.config.Bet < game.MinBet || !s.config.Bet.IsWhole() {
		return nil, &game.ConfigError{Reason: fmt.Sprintf("bet %s must be a whole number of chips of at least %s", s.config.Bet, game.MinBet)}
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	results := make([]sessionResult, s.config.Sessions)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range s.config.Sessions {
		g.Go(func() error {
			res, err := s.playSession(ctx, s.config.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("session %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Stats: &statistics.Statistics{}, Sessions: s.config.Sessions, Elapsed: time.Since(start)}
	for i := range results {
		out.Stats.Merge(&results[i].stats)
		switch results[i].reason {
		case game.ReasonBroke:
			out.Broke++
		case game.ReasonReshufflePoint:
			out.Reshuffle++
		}
	}

	if err := out.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	s.config.Logger.Info("Simulation complete", "sessions", out.Sessions, "rounds", out.Stats.Rounds, "elapsed", out.Elapsed)
	return out, nil
}

func (s *Simulator) playSession(ctx context.Context, seed int64) (sessionResult, error) {
	table, err := game.NewTable(randutil.New(seed), s.config.Table, game.WithLogger(s.tableLogger))
	if err != nil {
		return sessionResult{}, err
	}

	for range s.config.Rounds {
		if err := ctx.Err(); err != nil {
			return sessionResult{}, err
		}
		if over, _ := table.IsOver(); over {
			break
		}
		if err := s.playRound(table); err != nil {
			return sessionResult{}, fmt.Errorf("seed %d: %w", seed, err)
		}
	}

	_, reason := table.IsOver()
	stats := table.Stats()
	return sessionResult{stats: stats, reason: reason}, nil
}

func (s *Simulator) playRound(table *game.Table) error {
	r, err := table.StartRound()
	if err != nil {
		return err
	}

	bet := s.config.Bet
	if stack := table.Stack(); stack < bet {
		bet = stack / game.Chip * game.Chip
	}
	if err := r.SubmitBet(bet); err != nil {
		return err
	}

	for !r.IsFinished() {
		role, ok := r.ActiveHand()
		if !ok {
			return fmt.Errorf("round %s stalled in phase %s", r.ID(), r.Phase())
		}
		snap := r.Snapshot()
		action := Decide(*snap.Hand(role), r.LegalActions(role))
		if err := r.SubmitAction(action, role); err != nil {
			return err
		}
	}
	_, err = table.Finish(r)
	return err
}

// Decide applies the simulator's fixed strategy: split aces and eights,
// double on 10 or 11, stand on 17 or more and hit otherwise. It falls back
// to Hit or Stand when the preferred action is not legal.
func Decide(hand game.HandView, legal game.ActionSet) game.Action {
	if legal.Has(game.Split) {
		if r := hand.Cards[0].Rank(); r == deck.Ace || r == deck.Eight {
			return game.Split
		}
	}
	if legal.Has(game.Double) && (hand.Total == 10 || hand.Total == 11) {
		return game.Double
	}
	if hand.Total >= 17 {
		return game.Stand
	}
	return game.Hit
}

// Report is the machine-readable form of a Result.
type Report struct {
	Sessions     int     `json:"sessions"`
	Broke        int     `json:"broke"`
	Reshuffle    int     `json:"reshuffle"`
	Rounds       int     `json:"rounds"`
	Hands        int     `json:"hands"`
	Wagered      float64 `json:"wagered"`
	Net          float64 `json:"net"`
	MeanPerRound float64 `json:"mean_per_round"`
	StdDev       float64 `json:"std_dev"`
	CILow        float64 `json:"ci95_low"`
	CIHigh       float64 `json:"ci95_high"`
	Return       float64 `json:"return"`
	WinRate      float64 `json:"win_rate"`
	Blackjacks   int     `json:"blackjacks"`
	Busts        int     `json:"busts"`
	DealerBusts  int     `json:"dealer_busts"`
	ElapsedMS    int64   `json:"elapsed_ms"`
}

// Report summarizes the result without the per-round samples.
func (r *Result) Report() Report {
	low, high := r.Stats.ConfidenceInterval95()
	return Report{
		Sessions:     r.Sessions,
		Broke:        r.Broke,
		Reshuffle:    r.Reshuffle,
		Rounds:       r.Stats.Rounds,
		Hands:        r.Stats.Hands,
		Wagered:      r.Stats.Wagered,
		Net:          r.Stats.SumNet,
		MeanPerRound: r.Stats.Mean(),
		StdDev:       r.Stats.StdDev(),
		CILow:        low,
		CIHigh:       high,
		Return:       r.Stats.Return(),
		WinRate:      r.Stats.WinRate(),
		Blackjacks:   r.Stats.Blackjacks,
		Busts:        r.Stats.Busts,
		DealerBusts:  r.Stats.DealerBusts,
		ElapsedMS:    r.Elapsed.Milliseconds(),
	}
}

// PrintSummary writes a report of the simulation to w
func PrintSummary(w io.Writer, result *Result) {
	fmt.Fprintf(w, "\n=== SIMULATION RESULTS ===\n")
	fmt.Fprintf(w, "Sessions: %d (%d broke, %d ended at reshuffle)\n", result.Sessions, result.Broke, result.Reshuffle)
	fmt.Fprintln(w, result.Stats.Summary())
	fmt.Fprintf(w, "Median round: %+.2f  P5: %+.2f  P95: %+.2f\n",
		result.Stats.Median(), result.Stats.Percentile(0.05), result.Stats.Percentile(0.95))
	fmt.Fprintf(w, "Win rate: %.1f%%\n", result.Stats.WinRate()*100)
	fmt.Fprintf(w, "Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
}
