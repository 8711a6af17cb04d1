package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundValidation(t *testing.T) {
	t.Parallel()

	_, err := NewRound(nil, WholeChips(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))

	shoe, err := deck.NewStackedShoe(cards("As Kh"), 0)
	require.NoError(t, err)
	_, err = NewRound(shoe, -1)
	assert.True(t, errors.Is(err, ErrConfig))
	_, err = NewRound(shoe, MaxStack+1)
	assert.True(t, errors.Is(err, ErrConfig))

	r, err := NewRound(shoe, MaxStack)
	require.NoError(t, err)
	assert.Equal(t, PhaseBetting, r.Phase())
	assert.NotEmpty(t, r.ID(), "rounds get a generated id")
}

func TestSubmitBetValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount Chips
	}{
		{"zero", 0},
		{"negative", WholeChips(-5)},
		{"fractional", WholeChips(10) + 50},
		{"above stack", WholeChips(1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newStackedRound(t, "Ts Qh 9c Td", 1000)
			before := snapshotJSON(t, r)

			err := r.SubmitBet(tt.amount)
			require.Error(t, err)
			assert.True(t, IsRecoverable(err))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "bet", ve.Field)
			assert.Equal(t, before, snapshotJSON(t, r), "rejected bet must not change the round")
			assert.Equal(t, PhaseBetting, r.Phase())
		})
	}
}

func TestSubmitBetEntireStack(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts Qh 9c Td", 100)
	betAndDeal(t, r)
	assert.Equal(t, Chips(0), r.Stack())
	assert.Equal(t, PhasePlayerTurn, r.Phase())

	// no chips left to double or split
	assert.Equal(t, NewActionSet(Hit, Stand), r.LegalActions(MainHand))
}

func TestSubmitBetTwice(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts Qh 9c Td", 1000)
	betAndDeal(t, r)

	err := r.SubmitBet(WholeChips(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, WholeChips(900), r.Stack())
}

func TestDealOrder(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts 6h 9c 8d", 1000)
	betAndDeal(t, r)

	snap := r.Snapshot()
	assert.Equal(t, cards("Ts 6h"), snap.Main.Cards)
	assert.Equal(t, cards("9c"), snap.Dealer.Cards)
	assert.Equal(t, DealerHidden, snap.Dealer.Status)
	assert.Equal(t, PlayerActing, snap.Main.Status)
	assert.Equal(t, 16, snap.Main.Total)
	assert.True(t, snap.BetPlaced)
	assert.Nil(t, snap.Split)

	role, ok := r.ActiveHand()
	assert.True(t, ok)
	assert.Equal(t, MainHand, role)
}

func TestRoundScenarios(t *testing.T) {
	t.Parallel()

	type step struct {
		action Action
		role   HandRole
	}

	tests := []struct {
		name        string
		cards       string
		steps       []step
		wantStack   Chips
		wantOutcome []Outcome
		wantDealer  []deck.Card
	}{
		{
			name:        "player natural is paid 3:2 and dealer does not draw",
			cards:       "As Kh 9c 7d",
			wantStack:   WholeChips(1150),
			wantOutcome: []Outcome{OutcomeBlackjack},
			wantDealer:  cards("9c 7d"),
		},
		{
			name:        "twenty beats nineteen",
			cards:       "Ts Qh 9c Td",
			steps:       []step{{Stand, MainHand}},
			wantStack:   WholeChips(1100),
			wantOutcome: []Outcome{OutcomeWin},
			wantDealer:  cards("9c Td"),
		},
		{
			name:        "equal totals push",
			cards:       "Ts 8h 9c 9d",
			steps:       []step{{Stand, MainHand}},
			wantStack:   WholeChips(1000),
			wantOutcome: []Outcome{OutcomePush},
			wantDealer:  cards("9c 9d"),
		},
		{
			name:        "bust loses without revealing the dealer",
			cards:       "Ts 6h 9c 8d",
			steps:       []step{{Hit, MainHand}},
			wantStack:   WholeChips(900),
			wantOutcome: []Outcome{OutcomeBust},
			wantDealer:  cards("9c"),
		},
		{
			name:        "dealer draws to seventeen",
			cards:       "Ts 9h 2c 4d 5s 6h",
			steps:       []step{{Stand, MainHand}},
			wantStack:   WholeChips(1100),
			wantOutcome: []Outcome{OutcomeWin},
			wantDealer:  cards("2c 4d 5s 6h"),
		},
		{
			name:        "dealer stands on soft seventeen",
			cards:       "Ts 8h As 6d",
			steps:       []step{{Stand, MainHand}},
			wantStack:   WholeChips(1100),
			wantOutcome: []Outcome{OutcomeWin},
			wantDealer:  cards("As 6d"),
		},
		{
			name:        "both naturals push",
			cards:       "As Kh Ad Qc",
			wantStack:   WholeChips(1000),
			wantOutcome: []Outcome{OutcomePush},
			wantDealer:  cards("Ad Qc"),
		},
		{
			name:        "dealer natural beats three-card twenty-one",
			cards:       "7s 7h Ad 7c Kd",
			steps:       []step{{Hit, MainHand}, {Stand, MainHand}},
			wantStack:   WholeChips(900),
			wantOutcome: []Outcome{OutcomeLose},
			wantDealer:  cards("Ad Kd"),
		},
		{
			name:        "dealer natural beats twenty",
			cards:       "Ts Kh As Kd",
			steps:       []step{{Stand, MainHand}},
			wantStack:   WholeChips(900),
			wantOutcome: []Outcome{OutcomeLose},
			wantDealer:  cards("As Kd"),
		},
		{
			name:        "double on eleven wins against dealer bust",
			cards:       "5s 6h 9c Td 7s 8c",
			steps:       []step{{Double, MainHand}},
			wantStack:   WholeChips(1200),
			wantOutcome: []Outcome{OutcomeWin},
			wantDealer:  cards("9c 7s 8c"),
		},
		{
			name:  "split eights, main wins and split busts",
			cards: "8s 8h 9c 3d Ts 7c 9h Tc",
			steps: []step{
				{Split, MainHand},
				{Hit, MainHand},
				{Stand, MainHand},
				{Hit, SplitHand},
			},
			wantStack:   WholeChips(1000),
			wantOutcome: []Outcome{OutcomeWin, OutcomeBust},
			wantDealer:  cards("9c Tc"),
		},
		{
			name:  "split aces making twenty-one are paid even money",
			cards: "As Ad 9c Kh Qd 7s 2h",
			steps: []step{
				{Split, MainHand},
				{Stand, MainHand},
				{Stand, SplitHand},
			},
			wantStack:   WholeChips(1200),
			wantOutcome: []Outcome{OutcomeWin, OutcomeWin},
			wantDealer:  cards("9c 7s 2h"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newStackedRound(t, tt.cards, 1000)
			betAndDeal(t, r)
			for _, s := range tt.steps {
				mustAct(t, r, s.action, s.role)
			}

			require.True(t, r.IsFinished(), "round should be finished, phase %s", r.Phase())
			assert.NoError(t, r.Err())
			assert.Equal(t, tt.wantStack, r.Stack())

			settlements := r.Settlements()
			require.Len(t, settlements, len(tt.wantOutcome))
			for i, want := range tt.wantOutcome {
				assert.Equal(t, want, settlements[i].Outcome, "hand %d", i)
			}
			assert.Equal(t, tt.wantDealer, r.Snapshot().Dealer.Cards)

			_, active := r.ActiveHand()
			assert.False(t, active)
			assert.True(t, r.LegalActions(MainHand).Empty())
			assert.True(t, r.LegalActions(SplitHand).Empty())
		})
	}
}

func TestBustLeavesDealerHidden(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts 6h 9c 8d", 1000)
	betAndDeal(t, r)
	mustAct(t, r, Hit, MainHand)

	snap := r.Snapshot()
	assert.Equal(t, DealerHidden, snap.Dealer.Status)
	assert.Len(t, snap.Dealer.Cards, 1)
	assert.Equal(t, "Bust with 24, lost 100", r.Settlements()[0].Description)
}

func TestSplitFlow(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "8s 8h 9c 3d Ts 7c 9h Tc", 1000)
	betAndDeal(t, r)

	assert.Equal(t, NewActionSet(Hit, Stand, Double, Split), r.LegalActions(MainHand))
	mustAct(t, r, Split, MainHand)

	snap := r.Snapshot()
	require.NotNil(t, snap.Split)
	assert.Equal(t, WholeChips(800), snap.Stack)
	assert.Equal(t, cards("8s 3d"), snap.Main.Cards)
	assert.Equal(t, cards("8h"), snap.Split.Cards)
	assert.Equal(t, Dealt, snap.Split.Status)
	assert.Equal(t, WholeChips(200), snap.TotalBet())

	// no second split and no double after a split
	assert.Equal(t, NewActionSet(Hit, Stand), r.LegalActions(MainHand))
	assert.True(t, r.LegalActions(SplitHand).Empty(), "split hand waits for the main hand")

	err := r.SubmitAction(Hit, SplitHand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waits for the main hand")

	mustAct(t, r, Hit, MainHand)
	mustAct(t, r, Stand, MainHand)

	assert.Equal(t, PhaseSplitTurn, r.Phase())
	role, ok := r.ActiveHand()
	assert.True(t, ok)
	assert.Equal(t, SplitHand, role)
	assert.True(t, r.LegalActions(MainHand).Empty())
	assert.Equal(t, NewActionSet(Hit, Stand), r.LegalActions(SplitHand))
	assert.Equal(t, cards("8h 7c"), r.Snapshot().Split.Cards)

	mustAct(t, r, Hit, SplitHand)
	assert.True(t, r.IsFinished())

	settlements := r.Settlements()
	require.Len(t, settlements, 2)
	assert.Equal(t, MainHand, settlements[0].Role)
	assert.Equal(t, "21 beats 19, paid 200", settlements[0].Description)
	assert.Equal(t, SplitHand, settlements[1].Role)
	assert.Equal(t, WholeChips(-100), settlements[1].Net)
}

func TestSplitRequiresEqualRank(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts Kh 9c", 1000)
	betAndDeal(t, r)
	assert.Equal(t, NewActionSet(Hit, Stand, Double), r.LegalActions(MainHand))
}

func TestNoSplitOrDoubleAfterHit(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "2s 3h 9c 2d", 1000)
	betAndDeal(t, r)
	mustAct(t, r, Hit, MainHand)

	assert.Equal(t, NewActionSet(Hit, Stand), r.LegalActions(MainHand))
}

func TestInsufficientStackBlocksDoubleAndSplit(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "8s 8h 9c", 150)
	betAndDeal(t, r)

	legal := r.LegalActions(MainHand)
	assert.Equal(t, NewActionSet(Hit, Stand), legal)

	err := r.SubmitAction(Double, MainHand)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "allowed: hit, stand")
}

func TestIllegalActionLeavesRoundUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		setup  func(t *testing.T, r *Round)
		action Action
		role   HandRole
		reason string
	}{
		{"before bet", func(*testing.T, *Round) {}, Hit, MainHand, "place a bet first"},
		{"dealer hand", betAndDeal, Stand, DealerHand, "dealer"},
		{"no split hand", betAndDeal, Hit, SplitHand, "no split hand"},
		{"split without pair", betAndDeal, Split, MainHand, "not allowed"},
		{"after round", func(t *testing.T, r *Round) {
			betAndDeal(t, r)
			mustAct(t, r, Stand, MainHand)
		}, Hit, MainHand, "round is over"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newStackedRound(t, "Ts 9h 8c Td", 1000)
			tt.setup(t, r)
			before := snapshotJSON(t, r)

			err := r.SubmitAction(tt.action, tt.role)
			require.Error(t, err)
			assert.True(t, IsRecoverable(err))
			assert.Contains(t, err.Error(), tt.reason)
			assert.Equal(t, before, snapshotJSON(t, r))
		})
	}
}

func TestShoeExhaustionFailsRound(t *testing.T) {
	t.Parallel()

	t.Run("during deal", func(t *testing.T) {
		r := newStackedRound(t, "Ts 6h", 1000)
		err := r.SubmitBet(WholeChips(100))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrState))
		assert.True(t, errors.Is(err, deck.ErrEmptyShoe))
		assert.False(t, IsRecoverable(err))
		assert.Equal(t, PhaseFailed, r.Phase())
	})

	t.Run("during dealer turn", func(t *testing.T) {
		r := newStackedRound(t, "Ts 6h 9c", 1000)
		betAndDeal(t, r)
		err := r.SubmitAction(Stand, MainHand)
		require.Error(t, err)

		var se *StateError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "stand", se.Op)
		assert.Equal(t, PhaseFailed, r.Phase())
		assert.Equal(t, err, r.Err())

		// the failure is latched
		err = r.SubmitAction(Hit, MainHand)
		assert.True(t, errors.Is(err, ErrState))
		assert.False(t, r.IsFinished())
		assert.Nil(t, r.Settlements())
	})
}

func TestStackOverflowFailsRound(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts Qh 9c Td", 999999)
	betAndDeal(t, r)

	err := r.SubmitAction(Stand, MainHand)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrState))

	var se *StateError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "settle", se.Op)
	assert.Equal(t, PhaseFailed, r.Phase())
}

func TestNeedsReshuffle(t *testing.T) {
	t.Parallel()
	shoe, err := deck.NewStackedShoe(cards("Ts Qh 9c Td"), 4)
	require.NoError(t, err)
	r, err := NewRound(shoe, WholeChips(1000))
	require.NoError(t, err)

	betAndDeal(t, r)
	assert.True(t, shoe.NeedsReshuffle())
	assert.False(t, r.NeedsReshuffle(), "only reported once the round is finished")

	mustAct(t, r, Stand, MainHand)
	assert.True(t, r.NeedsReshuffle())
}

func TestRoundEvents(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock.Set(start)

	rec := &eventRecorder{}
	r := newStackedRound(t, "Ts 9h 2c 4d 5s 6h", 1000, WithObserver(rec), WithClock(clock))
	betAndDeal(t, r)
	mustAct(t, r, Stand, MainHand)

	assert.Equal(t, []EventType{
		EventTypeBetPlaced,
		EventTypeCardDealt,
		EventTypeCardDealt,
		EventTypeCardDealt,
		EventTypePlayerAction,
		EventTypeDealerRevealed,
		EventTypeCardDealt,
		EventTypeCardDealt,
		EventTypeHandSettled,
		EventTypeRoundFinished,
	}, rec.types())

	for _, e := range rec.events {
		assert.Equal(t, "test-round", e.RoundID)
		assert.Equal(t, start, e.Time)
	}

	var log []string
	for _, e := range rec.events {
		log = append(log, e.String())
	}
	got := strings.Join(log, "\n")
	assert.Contains(t, got, "Bet 100")
	assert.Contains(t, got, "Main hand draws 9♥ (19)")
	assert.Contains(t, got, "Dealer reveals 4♦ (6)")
	assert.Contains(t, got, "Main hand: 19 beats 17, paid 200")
	assert.Contains(t, got, "Round over, stack 1100")
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	r := newStackedRound(t, "Ts 9h 8c Td", 1000)
	betAndDeal(t, r)

	snap := r.Snapshot()
	snap.Main.Cards[0] = deck.MustParseCards("2c")[0]
	snap.Dealer.Cards = nil

	fresh := r.Snapshot()
	assert.Equal(t, cards("Ts 9h"), fresh.Main.Cards)
	assert.Len(t, fresh.Dealer.Cards, 1)
}
