package game

import "fmt"

// Outcome classifies a settled hand.
type Outcome uint8

const (
	OutcomeLose Outcome = iota
	OutcomeBust
	OutcomePush
	OutcomeWin
	OutcomeBlackjack
)

var outcomeNames = [...]string{"lose", "bust", "push", "win", "blackjack"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	i, err := parseName(outcomeNames[:], text, "outcome")
	*o = Outcome(i)
	return err
}

// Settlement is the result of one player hand.
type Settlement struct {
	Role        HandRole `json:"hand"`
	Bet         Chips    `json:"bet"`
	Payout      Chips    `json:"payout"`
	Net         Chips    `json:"net"`
	Outcome     Outcome  `json:"outcome"`
	PlayerTotal int      `json:"player_total"`
	DealerTotal int      `json:"dealer_total"`
	Description string   `json:"description"`
}

// Payout returns the amount returned to the stack for a hand with bet b.
// playerNatural must already account for the hand's role (see IsNatural).
//
//	natural vs non-natural dealer        2.5b
//	player <= 21 beats dealer or dealer busts   2b
//	equal totals without dealer natural, or both natural   b
//	otherwise                            0
func Payout(bet Chips, player Score, playerNatural bool, dealer Score, dealerNatural bool) (Chips, Outcome) {
	p, d := player.Total, dealer.Total
	switch {
	case playerNatural && !dealerNatural:
		return bet * 5 / 2, OutcomeBlackjack
	case p <= blackjackTotal && (p > d || d > blackjackTotal):
		return bet * 2, OutcomeWin
	case p <= blackjackTotal && ((!dealerNatural && p == d) || (playerNatural && dealerNatural)):
		return bet, OutcomePush
	case p > blackjackTotal:
		return 0, OutcomeBust
	default:
		return 0, OutcomeLose
	}
}

func settle(role HandRole, bet Chips, player Score, playerNatural bool, dealer Score, dealerNatural bool) Settlement {
	payout, outcome := Payout(bet, player, playerNatural, dealer, dealerNatural)
	s := Settlement{
		Role:        role,
		Bet:         bet,
		Payout:      payout,
		Net:         payout - bet,
		Outcome:     outcome,
		PlayerTotal: player.Total,
		DealerTotal: dealer.Total,
	}
	s.Description = describe(s, dealer, dealerNatural)
	return s
}

func describe(s Settlement, dealer Score, dealerNatural bool) string {
	switch s.Outcome {
	case OutcomeBlackjack:
		return fmt.Sprintf("Blackjack! Paid %s", s.Payout)
	case OutcomeWin:
		if dealer.Bust() {
			return fmt.Sprintf("Dealer busts with %d, paid %s", dealer.Total, s.Payout)
		}
		return fmt.Sprintf("%d beats %d, paid %s", s.PlayerTotal, dealer.Total, s.Payout)
	case OutcomePush:
		return fmt.Sprintf("Push, %s returned", s.Payout)
	case OutcomeBust:
		return fmt.Sprintf("Bust with %d, lost %s", s.PlayerTotal, s.Bet)
	default:
		if dealerNatural {
			return fmt.Sprintf("Dealer blackjack, lost %s", s.Bet)
		}
		return fmt.Sprintf("Dealer's %d beats %d, lost %s", dealer.Total, s.PlayerTotal, s.Bet)
	}
}
