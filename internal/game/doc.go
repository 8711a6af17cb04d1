// Package game implements a single-player Blackjack round engine.
//
// The main type is Round, which manages one hand against the dealer: bet
// placement, the deal, the player's turn (with an optional split hand), the
// dealer's turn and settlement against the chip stack.
//
// # Basic Usage
//
// A Round is pull-based. The caller supplies a bet, then actions, until the
// round is finished:
//
//	shoe, _ := deck.NewShoe(6, randutil.New(42))
//	r, _ := game.NewRound(shoe, game.WholeChips(1000))
//	if err := r.SubmitBet(game.WholeChips(100)); err != nil {
//	    // game.IsRecoverable(err) means re-prompt
//	}
//	for !r.IsFinished() {
//	    hand, _ := r.ActiveHand()
//	    _ = r.SubmitAction(game.Stand, hand)
//	}
//	for _, s := range r.Settlements() {
//	    fmt.Println(s.Description)
//	}
//
// Rejected input returns a *ValidationError and leaves the round untouched.
// A *StateError (for example an exhausted shoe) stops the round for good.
//
// # Sessions
//
// Table carries the stack and shoe from one round to the next, keeps history
// and statistics, and applies a ReshufflePolicy when the shoe passes its
// reshuffle point.
//
// # Deterministic Testing
//
// Build shoes from a seeded source with randutil.New, or use
// deck.NewStackedShoe to fix the exact order of cards:
//
//	shoe, _ := deck.NewStackedShoe(deck.MustParseCards("As Kh 9c 7d"), 0)
//	r, _ := game.NewRound(shoe, game.WholeChips(1000))
package game
