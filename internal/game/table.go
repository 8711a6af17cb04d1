package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/statistics"
)

// ReshufflePolicy decides what a Table does once its shoe passes the
// reshuffle point.
type ReshufflePolicy uint8

const (
	// ReshuffleEndSession ends the session at the reshuffle point.
	ReshuffleEndSession ReshufflePolicy = iota
	// ReshuffleNewShoe replaces the shoe and keeps playing.
	ReshuffleNewShoe
)

func (p ReshufflePolicy) String() string {
	if p == ReshuffleNewShoe {
		return "new_shoe"
	}
	return "end_session"
}

// ParseReshufflePolicy parses "end_session" or "new_shoe".
func ParseReshufflePolicy(s string) (ReshufflePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "end", "end_session":
		return ReshuffleEndSession, nil
	case "new_shoe", "reshuffle":
		return ReshuffleNewShoe, nil
	}
	return 0, &ConfigError{Reason: fmt.Sprintf("unknown reshuffle policy %q", s)}
}

// Reasons a session ends, as reported by Table.IsOver.
const (
	ReasonBroke          = "the stack cannot cover the minimum bet"
	ReasonReshufflePoint = "the shoe reached its reshuffle point"
)

// TableConfig holds the session settings for a Table.
type TableConfig struct {
	Decks         int
	StartingStack Chips
	Reshuffle     ReshufflePolicy
}

// DefaultTableConfig returns the standard session settings.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Decks:         6,
		StartingStack: WholeChips(1000),
		Reshuffle:     ReshuffleEndSession,
	}
}

// RoundRecord is the history entry for a finished round.
type RoundRecord struct {
	ID          string       `json:"id"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Wagered     Chips        `json:"wagered"`
	Settlements []Settlement `json:"settlements"`
	Dealer      DealerView   `json:"dealer"`
	StackAfter  Chips        `json:"stack_after"`
}

// Net returns the round's total win or loss.
func (rr RoundRecord) Net() Chips {
	var net Chips
	for _, s := range rr.Settlements {
		net += s.Net
	}
	return net
}

// Table is a single-player session: it owns the chip stack and the shoe
// across rounds and starts one Round at a time.
type Table struct {
	config TableConfig
	rng    *rand.Rand
	shoe   *deck.Shoe
	stack  Chips

	current      *Round
	currentStart time.Time
	history      []RoundRecord
	stats        statistics.Statistics

	over       bool
	overReason string

	roundOpts []RoundOption
	logger    *log.Logger
	clock     quartz.Clock
}

// NewTable builds a session with a fresh shoe drawn from rng. The options are
// applied to every round the table starts.
func NewTable(rng *rand.Rand, config TableConfig, opts ...RoundOption) (*Table, error) {
	if rng == nil {
		panic("rng is required for table creation")
	}
	if config.StartingStack < 0 || config.StartingStack > MaxStack {
		return nil, &ConfigError{Reason: fmt.Sprintf("starting stack %s outside [0, %s]", config.StartingStack, MaxStack)}
	}

	shoe, err := deck.NewShoe(config.Decks, rng)
	if err != nil {
		return nil, &ConfigError{Reason: "cannot build shoe", Err: err}
	}

	cfg := defaultRoundConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	t := &Table{
		config:    config,
		rng:       rng,
		shoe:      shoe,
		stack:     config.StartingStack,
		roundOpts: opts,
		logger:    cfg.logger.WithPrefix("table"),
		clock:     cfg.clock,
	}
	t.logger.Info("Table ready", "decks", config.Decks, "stack", t.stack, "reshuffle_point", shoe.ReshufflePoint())
	t.checkBroke()
	return t, nil
}

// Config returns the table's settings.
func (t *Table) Config() TableConfig { return t.config }

// Stack returns the player's chips between rounds.
func (t *Table) Stack() Chips {
	if t.current != nil {
		return t.current.Stack()
	}
	return t.stack
}

// Current returns the round in progress or the last round started.
func (t *Table) Current() *Round { return t.current }

// IsOver reports whether the session has ended and why.
func (t *Table) IsOver() (bool, string) { return t.over, t.overReason }

// ShoeStatus returns the cards left in the shoe and its reshuffle point.
func (t *Table) ShoeStatus() (remaining, reshufflePoint int) {
	return t.shoe.Remaining(), t.shoe.ReshufflePoint()
}

// History returns finished rounds, oldest first.
func (t *Table) History() []RoundRecord {
	return append([]RoundRecord(nil), t.history...)
}

// Stats returns a copy of the session statistics.
func (t *Table) Stats() statistics.Statistics {
	s := t.stats
	s.Values = append([]float64(nil), t.stats.Values...)
	return s
}

// StartRound begins a new round using the current stack and shoe.
func (t *Table) StartRound() (*Round, error) {
	if t.over {
		return nil, &ValidationError{Field: "round", Reason: "the session is over: " + t.overReason}
	}
	if t.current != nil && !t.current.IsFinished() {
		return nil, &ValidationError{Field: "round", Reason: "the current round is not finished"}
	}
	if t.current != nil {
		if _, err := t.Finish(t.current); err != nil {
			return nil, err
		}
		if t.over {
			return nil, &ValidationError{Field: "round", Reason: "the session is over: " + t.overReason}
		}
	}

	opts := append(append([]RoundOption(nil), t.roundOpts...), WithID(uuid.NewString()))
	r, err := NewRound(t.shoe, t.stack, opts...)
	if err != nil {
		return nil, err
	}
	t.current = r
	t.currentStart = t.clock.Now()
	t.logger.Debug("Round started", "round", r.ID(), "stack", t.stack, "shoe", t.shoe.Remaining())
	return r, nil
}

// Finish records a finished round, updates the stack and statistics and
// applies the reshuffle policy. Finishing the same round twice is a no-op.
func (t *Table) Finish(r *Round) (RoundRecord, error) {
	if r == nil || r != t.current {
		return RoundRecord{}, &ValidationError{Field: "round", Reason: "not the table's current round"}
	}
	if n := len(t.history); n > 0 && t.history[n-1].ID == r.ID() {
		return t.history[n-1], nil
	}
	if err := r.Err(); err != nil {
		return RoundRecord{}, err
	}
	if !r.IsFinished() {
		return RoundRecord{}, &ValidationError{Field: "round", Reason: "the round is not finished"}
	}

	snap := r.Snapshot()
	rec := RoundRecord{
		ID:          r.ID(),
		StartedAt:   t.currentStart,
		FinishedAt:  t.clock.Now(),
		Wagered:     snap.TotalBet(),
		Settlements: r.Settlements(),
		Dealer:      snap.Dealer,
		StackAfter:  r.Stack(),
	}
	t.history = append(t.history, rec)
	t.stack = r.Stack()
	t.stats.Add(roundResult(rec, snap))
	t.logger.Info("Round recorded", "round", rec.ID, "net", rec.Net(), "stack", t.stack,
		"duration", rec.FinishedAt.Sub(rec.StartedAt))

	if t.shoe.NeedsReshuffle() {
		switch t.config.Reshuffle {
		case ReshuffleNewShoe:
			if err := t.Reshuffle(); err != nil {
				return rec, err
			}
		default:
			t.end(ReasonReshufflePoint)
		}
	}
	t.checkBroke()
	return rec, nil
}

// Reshuffle replaces the shoe with a freshly shuffled one. It may only be
// called between rounds.
func (t *Table) Reshuffle() error {
	if t.current != nil && !t.current.IsFinished() {
		return &ValidationError{Field: "reshuffle", Reason: "a round is in progress"}
	}
	shoe, err := deck.NewShoe(t.config.Decks, t.rng)
	if err != nil {
		return &ConfigError{Reason: "cannot build shoe", Err: err}
	}
	t.shoe = shoe
	t.logger.Info("Shoe reshuffled", "cards", shoe.Size(), "reshuffle_point", shoe.ReshufflePoint())
	return nil
}

func (t *Table) checkBroke() {
	if !t.over && t.stack < MinBet {
		t.end(ReasonBroke)
	}
}

func (t *Table) end(reason string) {
	t.over = true
	t.overReason = reason
	t.logger.Info("Session over", "reason", reason, "stack", t.stack, "rounds", len(t.history))
}

func roundResult(rec RoundRecord, snap Snapshot) statistics.RoundResult {
	res := statistics.RoundResult{
		Net:        rec.Net().Float64(),
		Wagered:    rec.Wagered.Float64(),
		Split:      snap.Split != nil,
		Doubled:    snap.Main.Doubled,
		DealerBust: snap.Dealer.Total > blackjackTotal,
	}
	for _, s := range rec.Settlements {
		res.Outcomes = append(res.Outcomes, s.Outcome.String())
	}
	return res
}
