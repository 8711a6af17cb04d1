package game

// LegalActions returns the actions permitted on the given player hand. It
// reads only the snapshot, so callers can ask "what if" questions about any
// view of a round.
//
// Hit and Stand are legal on whichever hand is acting. Double is legal on a
// two-card main hand before any split when the stack covers the bet again.
// Split is legal on a two-card main hand of equal ranks, once per round, when
// the stack covers a second bet. A natural blackjack has no actions.
func LegalActions(s Snapshot, role HandRole) ActionSet {
	var h *HandView
	switch role {
	case MainHand:
		if s.Phase != PhasePlayerTurn || !s.BetPlaced || s.PlayerInputEnded {
			return 0
		}
		h = &s.Main
	case SplitHand:
		// the split hand waits for the main hand's turn to end
		if s.Phase != PhaseSplitTurn || s.Split == nil || !s.PlayerInputEnded || s.SplitInputEnded {
			return 0
		}
		h = s.Split
	default:
		return 0
	}

	if h.Status != PlayerActing || h.Blackjack {
		return 0
	}

	actions := NewActionSet(Hit, Stand)
	if role != MainHand || s.Split != nil || len(h.Cards) != naturalHandSize {
		return actions
	}
	if s.Stack >= h.Bet {
		actions = actions.With(Double)
		if h.Cards[0].Rank() == h.Cards[1].Rank() {
			actions = actions.With(Split)
		}
	}
	return actions
}
