package deck

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	CardsPerDeck      = 52
	MinDecks          = 1
	MaxDecks          = 6
	MinReshufflePoint = 30
)

var (
	// ErrEmptyShoe is returned by Draw when no cards remain.
	ErrEmptyShoe = errors.New("shoe is empty")
	// ErrDeckCount is returned when a shoe is built with an unsupported number of decks.
	ErrDeckCount = errors.New("deck count out of range")
	// ErrReshufflePoint is returned when a stacked shoe's reshuffle point is not within its cards.
	ErrReshufflePoint = errors.New("reshuffle point out of range")
)

// Shoe holds the undealt cards of one or more decks. Cards are dealt from the
// front. The reshuffle point is fixed for the shoe's lifetime.
type Shoe struct {
	cards          []Card
	next           int
	decks          int
	reshufflePoint int
}

// NewShoe builds a shuffled shoe of numDecks standard decks and picks its
// reshuffle point uniformly from [MinReshufflePoint, 52*numDecks].
func NewShoe(numDecks int, rng *rand.Rand) (*Shoe, error) {
	if numDecks < MinDecks || numDecks > MaxDecks {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrDeckCount, numDecks, MinDecks, MaxDecks)
	}
	if rng == nil {
		panic("rng is required for shoe creation")
	}

	n := numDecks * CardsPerDeck
	s := &Shoe{
		cards: make([]Card, n),
		decks: numDecks,
	}
	for i := range n {
		s.cards[i] = Card(i)
	}

	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}

	s.reshufflePoint = MinReshufflePoint + rng.IntN(n-MinReshufflePoint+1)
	return s, nil
}

// NewStackedShoe returns a shoe that deals cards in exactly the given order.
func NewStackedShoe(cards []Card, reshufflePoint int) (*Shoe, error) {
	if reshufflePoint < 0 || reshufflePoint > len(cards) {
		return nil, fmt.Errorf("%w: %d (must be 0-%d)", ErrReshufflePoint, reshufflePoint, len(cards))
	}
	return &Shoe{
		cards:          append([]Card(nil), cards...),
		decks:          (len(cards) + CardsPerDeck - 1) / CardsPerDeck,
		reshufflePoint: reshufflePoint,
	}, nil
}

// Draw removes and returns the next card.
func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return 0, ErrEmptyShoe
	}
	c := s.cards[s.next]
	s.next++
	return c, nil
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

// Size returns the number of cards the shoe started with.
func (s *Shoe) Size() int {
	return len(s.cards)
}

// Decks returns how many decks the shoe was built from.
func (s *Shoe) Decks() int {
	return s.decks
}

// ReshufflePoint returns the remaining-card threshold chosen at construction.
func (s *Shoe) ReshufflePoint() int {
	return s.reshufflePoint
}

// NeedsReshuffle reports whether fewer cards remain than the reshuffle point.
func (s *Shoe) NeedsReshuffle() bool {
	return s.Remaining() < s.reshufflePoint
}
