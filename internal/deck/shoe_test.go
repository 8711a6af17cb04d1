package deck

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShoeDeckCount(t *testing.T) {
	for _, n := range []int{0, -1, 7, 52} {
		_, err := NewShoe(n, randutil.New(1))
		require.ErrorIs(t, err, ErrDeckCount, "decks=%d", n)
	}

	for n := MinDecks; n <= MaxDecks; n++ {
		s, err := NewShoe(n, randutil.New(1))
		require.NoError(t, err)
		assert.Equal(t, n*CardsPerDeck, s.Remaining())
		assert.Equal(t, n*CardsPerDeck, s.Size())
		assert.Equal(t, n, s.Decks())
		assert.GreaterOrEqual(t, s.ReshufflePoint(), MinReshufflePoint)
		assert.LessOrEqual(t, s.ReshufflePoint(), n*CardsPerDeck)
	}
}

func TestShoeContainsEveryIdentityOnce(t *testing.T) {
	s, err := NewShoe(4, randutil.New(99))
	require.NoError(t, err)

	seen := make(map[Card]bool)
	for s.Remaining() > 0 {
		c, err := s.Draw()
		require.NoError(t, err)
		require.False(t, seen[c], "card %d dealt twice", c)
		seen[c] = true
	}
	assert.Len(t, seen, 4*CardsPerDeck)
}

func TestShoeDrawUntilEmpty(t *testing.T) {
	for decks := MinDecks; decks <= MaxDecks; decks++ {
		s, err := NewShoe(decks, randutil.New(int64(decks)))
		require.NoError(t, err)

		for i := 0; i < decks*CardsPerDeck; i++ {
			_, err := s.Draw()
			require.NoError(t, err)
		}
		assert.Equal(t, 0, s.Remaining())

		_, err = s.Draw()
		assert.ErrorIs(t, err, ErrEmptyShoe)
	}
}

func TestShoeNeedsReshuffle(t *testing.T) {
	s, err := NewShoe(1, randutil.New(7))
	require.NoError(t, err)

	for s.Remaining() > 0 {
		assert.Equal(t, s.Remaining() < s.ReshufflePoint(), s.NeedsReshuffle(),
			"remaining=%d point=%d", s.Remaining(), s.ReshufflePoint())
		_, err := s.Draw()
		require.NoError(t, err)
	}
	assert.True(t, s.NeedsReshuffle())
}

func TestShoeIsSeedable(t *testing.T) {
	a, err := NewShoe(2, randutil.New(42))
	require.NoError(t, err)
	b, err := NewShoe(2, randutil.New(42))
	require.NoError(t, err)

	assert.Equal(t, a.ReshufflePoint(), b.ReshufflePoint())
	for a.Remaining() > 0 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		require.Equal(t, ca, cb)
	}
}

func TestNewStackedShoe(t *testing.T) {
	cards := MustParseCards("As Kd 9c")
	s, err := NewStackedShoe(cards, 2)
	require.NoError(t, err)
	cards[0] = NewCard(Two, Clubs) // caller's slice is copied

	c, err := s.Draw()
	require.NoError(t, err)
	assert.Equal(t, NewCard(Ace, Spades), c)
	assert.False(t, s.NeedsReshuffle())

	_, _ = s.Draw()
	assert.True(t, s.NeedsReshuffle())

	_, err = NewStackedShoe(cards, 4)
	assert.ErrorIs(t, err, ErrReshufflePoint)
	_, err = NewStackedShoe(cards, -1)
	assert.ErrorIs(t, err, ErrReshufflePoint)
}

func TestNewShoePanicsWithoutRNG(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewShoe(1, nil) })
}
