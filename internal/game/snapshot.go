package game

import (
	"fmt"
	"slices"

	"github.com/lox/blackjack/internal/deck"
)

// Phase is the round's position in its lifecycle.
type Phase uint8

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhasePlayerTurn
	PhaseSplitTurn
	PhaseDealerTurn
	PhaseSettling
	PhaseFinished
	// PhaseFailed is entered when a StateError stops the round.
	PhaseFailed
)

var phaseNames = [...]string{"betting", "dealing", "player_turn", "split_turn", "dealer_turn", "settling", "finished", "failed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	i, err := parseName(phaseNames[:], text, "phase")
	*p = Phase(i)
	return err
}

// HandStatus tracks a player hand through its turn.
type HandStatus uint8

const (
	AwaitingBet HandStatus = iota
	// Dealt means cards are on the table but the hand's turn has not begun.
	Dealt
	PlayerActing
	PlayerDone
)

var handStatusNames = [...]string{"awaiting_bet", "dealt", "acting", "done"}

func (s HandStatus) String() string {
	if int(s) < len(handStatusNames) {
		return handStatusNames[s]
	}
	return "unknown"
}

func (s HandStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *HandStatus) UnmarshalText(text []byte) error {
	i, err := parseName(handStatusNames[:], text, "hand status")
	*s = HandStatus(i)
	return err
}

// DealerStatus tracks the dealer's hand.
type DealerStatus uint8

const (
	// DealerHidden means the hole card has not been drawn yet.
	DealerHidden DealerStatus = iota
	DealerRevealing
	DealerDone
)

var dealerStatusNames = [...]string{"hidden", "revealing", "done"}

func (s DealerStatus) String() string {
	if int(s) < len(dealerStatusNames) {
		return dealerStatusNames[s]
	}
	return "unknown"
}

func (s DealerStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DealerStatus) UnmarshalText(text []byte) error {
	i, err := parseName(dealerStatusNames[:], text, "dealer status")
	*s = DealerStatus(i)
	return err
}

// HandView is a read-only copy of one player hand.
type HandView struct {
	Role      HandRole    `json:"role"`
	Cards     []deck.Card `json:"cards"`
	Bet       Chips       `json:"bet"`
	Total     int         `json:"total"`
	Soft      bool        `json:"soft"`
	Blackjack bool        `json:"blackjack"`
	Doubled   bool        `json:"doubled"`
	Status    HandStatus  `json:"status"`
}

// DealerView is a read-only copy of the dealer's hand.
type DealerView struct {
	Cards     []deck.Card  `json:"cards"`
	Total     int          `json:"total"`
	Soft      bool         `json:"soft"`
	Blackjack bool         `json:"blackjack"`
	Status    DealerStatus `json:"status"`
}

// Snapshot is a read-only view of a round for rendering. It shares no memory
// with the round.
type Snapshot struct {
	RoundID          string     `json:"round_id"`
	Phase            Phase      `json:"phase"`
	Stack            Chips      `json:"stack"`
	Dealer           DealerView `json:"dealer"`
	Main             HandView   `json:"main"`
	Split            *HandView  `json:"split,omitempty"`
	BetPlaced        bool       `json:"bet_placed"`
	PlayerInputEnded bool       `json:"player_input_ended"`
	SplitInputEnded  bool       `json:"split_input_ended"`
}

// Hand returns the view for a player role, or nil when that hand does not exist.
func (s Snapshot) Hand(role HandRole) *HandView {
	switch role {
	case MainHand:
		return &s.Main
	case SplitHand:
		return s.Split
	}
	return nil
}

// TotalBet is the amount currently wagered across player hands.
func (s Snapshot) TotalBet() Chips {
	total := s.Main.Bet
	if s.Split != nil {
		total += s.Split.Bet
	}
	return total
}

func parseName(names []string, text []byte, kind string) (int, error) {
	i := slices.Index(names, string(text))
	if i < 0 {
		return 0, fmt.Errorf("unknown %s %q", kind, text)
	}
	return i, nil
}
