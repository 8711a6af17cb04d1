package game

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a round event type
type EventType string

const (
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeCardDealt      EventType = "card_dealt"
	EventTypePlayerAction   EventType = "player_action"
	EventTypeDealerRevealed EventType = "dealer_revealed"
	EventTypeHandSettled    EventType = "hand_settled"
	EventTypeRoundFinished  EventType = "round_finished"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published by a Round as it advances. Only the fields relevant to
// the event type are set.
type Event struct {
	Type       EventType
	RoundID    string
	Role       HandRole
	Card       deck.Card
	Action     Action
	Amount     Chips
	Total      int
	Settlement *Settlement
	Time       time.Time
}

// String formats the event for a game log.
func (e Event) String() string {
	switch e.Type {
	case EventTypeBetPlaced:
		return fmt.Sprintf("Bet %s", e.Amount)
	case EventTypeCardDealt:
		if e.Role == DealerHand {
			return fmt.Sprintf("Dealer draws %s (%d)", e.Card, e.Total)
		}
		return fmt.Sprintf("%s hand draws %s (%d)", capitalize(e.Role.String()), e.Card, e.Total)
	case EventTypePlayerAction:
		if e.Amount > 0 {
			return fmt.Sprintf("%s hand: %s for %s", capitalize(e.Role.String()), e.Action, e.Amount)
		}
		return fmt.Sprintf("%s hand: %s", capitalize(e.Role.String()), e.Action)
	case EventTypeDealerRevealed:
		return fmt.Sprintf("Dealer reveals %s (%d)", e.Card, e.Total)
	case EventTypeHandSettled:
		if e.Settlement != nil {
			return fmt.Sprintf("%s hand: %s", capitalize(e.Role.String()), e.Settlement.Description)
		}
	case EventTypeRoundFinished:
		return fmt.Sprintf("Round over, stack %s", e.Amount)
	}
	return string(e.Type)
}

// Observer receives round events.
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(event Event) { f(event) }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
