package game

import (
	"encoding/json"
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/stretchr/testify/require"
)

// newStackedRound returns a round whose shoe deals cards in the given order:
// two to the main hand, one to the dealer, then whatever play requires.
func newStackedRound(t *testing.T, cards string, stack int64, opts ...RoundOption) *Round {
	t.Helper()
	shoe, err := deck.NewStackedShoe(deck.MustParseCards(cards), 0)
	require.NoError(t, err)
	r, err := NewRound(shoe, WholeChips(stack), append([]RoundOption{WithID("test-round")}, opts...)...)
	require.NoError(t, err)
	return r
}

// betAndDeal places a bet of 100 and requires it to succeed.
func betAndDeal(t *testing.T, r *Round) {
	t.Helper()
	require.NoError(t, r.SubmitBet(WholeChips(100)))
}

func mustAct(t *testing.T, r *Round, action Action, role HandRole) {
	t.Helper()
	require.NoError(t, r.SubmitAction(action, role), "%s on %s hand", action, role)
}

func snapshotJSON(t *testing.T, r *Round) []byte {
	t.Helper()
	b, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)
	return b
}

type eventRecorder struct {
	events []Event
}

func (e *eventRecorder) OnEvent(event Event) {
	e.events = append(e.events, event)
}

func (e *eventRecorder) types() []EventType {
	types := make([]EventType, len(e.events))
	for i, ev := range e.events {
		types[i] = ev.Type
	}
	return types
}

func cards(s string) []deck.Card {
	return append([]deck.Card{}, deck.MustParseCards(s)...)
}
