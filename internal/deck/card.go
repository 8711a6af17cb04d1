package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. The zero value is Two so that a card identity
// modulo 13 maps straight onto a Rank.
type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// String returns the string representation of a rank
func (r Rank) String() string {
	if int(r) >= len(rankChars) {
		return "?"
	}
	return rankChars[r : r+1]
}

// Points returns the Blackjack value of the rank with Aces counted as 11.
func (r Rank) Points() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r) + 2
	}
}

// Card is a card identity in [0, 52*decks). Rank and suit are derived from the
// identity, so two cards from different decks can share both.
type Card int

// NewCard returns the first-deck identity for the given rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(int(suit)*13 + int(rank))
}

// Rank returns the card's rank.
func (c Card) Rank() Rank {
	return Rank(int(c) % 13)
}

// Suit returns the card's suit.
func (c Card) Suit() Suit {
	return Suit((int(c) / 13) % 4)
}

// Points returns the Blackjack value of the card with Aces counted as 11.
func (c Card) Points() int {
	return c.Rank().Points()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank() == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit().IsRed()
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank().String() + c.Suit().String()
}

// Code returns the ASCII form of the card (e.g., "As"), the inverse of ParseCard.
func (c Card) Code() string {
	return c.Rank().String() + string("shdc"[c.Suit()])
}

// MarshalText encodes the card as its ASCII code.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

// UnmarshalText decodes an ASCII code. The result is the first-deck identity
// for that rank and suit.
func (c *Card) UnmarshalText(text []byte) error {
	v, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCard parses a two character card such as "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	r := strings.IndexByte(rankChars, upper(s[0]))
	if r < 0 {
		return 0, fmt.Errorf("invalid rank in card %q", s)
	}
	var suit Suit
	switch upper(s[1]) {
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	default:
		return 0, fmt.Errorf("invalid suit in card %q", s)
	}
	return NewCard(Rank(r), suit), nil
}

// ParseCards parses a run of cards such as "AsKd" or "As Kd 9c".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string %q: odd length", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for test fixtures; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
