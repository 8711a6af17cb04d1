package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Chips is an amount of money in hundredths of a chip. Bets are whole chips;
// the 3:2 blackjack payout can leave half chips on the stack.
type Chips int64

const (
	Cent Chips = 1
	Chip Chips = 100

	// MaxStack is the largest stack a player may hold.
	MaxStack = 999999 * Chip
	// MinBet is the smallest bet accepted.
	MinBet = Chip
)

// WholeChips converts a whole number of chips to Chips.
func WholeChips(n int64) Chips {
	return Chips(n) * Chip
}

// IsWhole reports whether c has no fractional part.
func (c Chips) IsWhole() bool {
	return c%Chip == 0
}

// Float64 returns c in chips.
func (c Chips) Float64() float64 {
	return float64(c) / float64(Chip)
}

// String formats c as "150" or "150.50".
func (c Chips) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	whole, frac := c/Chip, c%Chip
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}

// ParseChips parses a non-negative decimal amount with at most two fractional
// digits. Malformed input yields a *ValidationError.
func ParseChips(s string) (Chips, error) {
	s = strings.TrimSpace(s)
	invalid := &ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a valid amount", s)}
	if s == "" {
		return 0, &ValidationError{Field: "amount", Reason: "amount is required"}
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || !allDigits(whole) {
		return 0, invalid
	}
	if hasFrac && (frac == "" || len(frac) > 2 || !allDigits(frac)) {
		return 0, invalid
	}
	// anything longer cannot be a legal stack or bet
	if len(strings.TrimLeft(whole, "0")) > 7 {
		return 0, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%s exceeds the maximum of %s", s, MaxStack)}
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, invalid
	}
	c := WholeChips(w)
	if hasFrac {
		f, _ := strconv.ParseInt(frac, 10, 64)
		if len(frac) == 1 {
			f *= 10
		}
		c += Chips(f)
	}
	return c, nil
}

// MarshalJSON encodes c as a decimal JSON number.
func (c Chips) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or string holding a decimal amount.
func (c *Chips) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseChips(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
