package game

import "github.com/lox/blackjack/internal/deck"

const (
	blackjackTotal  = 21
	dealerStandsOn  = 17
	aceSoftening    = 10
	naturalHandSize = 2
)

// Score is the evaluated state of a hand.
type Score struct {
	Total int
	// Soft is true while at least one Ace is still counted as 11.
	Soft bool
	// Blackjack is true for any two-card 21. Whether it earns the natural
	// bonus depends on the hand's role; see IsNatural.
	Blackjack bool
}

// Bust reports whether the total exceeds 21.
func (s Score) Bust() bool {
	return s.Total > blackjackTotal
}

// Evaluate scores cards. Aces count 11 and are softened to 1, one at a time,
// while the total exceeds 21.
func Evaluate(cards []deck.Card) Score {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Points()
		if c.IsAce() {
			aces++
		}
	}
	for total > blackjackTotal && aces > 0 {
		total -= aceSoftening
		aces--
	}
	return Score{
		Total:     total,
		Soft:      aces > 0,
		Blackjack: len(cards) == naturalHandSize && total == blackjackTotal,
	}
}

// IsNatural reports whether a score counts as a natural blackjack for the
// given role. Split hands never do, and neither does the main hand once a
// split has happened.
func IsNatural(s Score, role HandRole, splitOccurred bool) bool {
	if !s.Blackjack {
		return false
	}
	switch role {
	case DealerHand:
		return true
	case MainHand:
		return !splitOccurred
	default:
		return false
	}
}
