package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
)

// Round runs a single hand of Blackjack against the dealer. It is driven by
// its caller: one SubmitBet, then SubmitAction until IsFinished reports true.
// Transient phases (dealing, the dealer's turn, settling) run inside those
// calls. A Round is not safe for concurrent use.
type Round struct {
	id    string
	shoe  *deck.Shoe
	stack Chips
	phase Phase

	dealer       []deck.Card
	dealerStatus DealerStatus
	main         playerHand
	split        *playerHand

	betPlaced        bool
	playerInputEnded bool
	splitInputEnded  bool

	settlements []Settlement
	err         error

	logger    *log.Logger
	observers []Observer
	clock     quartz.Clock
}

type playerHand struct {
	cards   []deck.Card
	bet     Chips
	doubled bool
	status  HandStatus
}

func (h *playerHand) view(role HandRole, splitOccurred bool) HandView {
	score := Evaluate(h.cards)
	return HandView{
		Role:      role,
		Cards:     append([]deck.Card{}, h.cards...),
		Bet:       h.bet,
		Total:     score.Total,
		Soft:      score.Soft,
		Blackjack: IsNatural(score, role, splitOccurred),
		Doubled:   h.doubled,
		Status:    h.status,
	}
}

// NewRound starts a round in the betting phase. The shoe is shared with
// later rounds; stack is the player's chips carried in from the last round.
func NewRound(shoe *deck.Shoe, stack Chips, opts ...RoundOption) (*Round, error) {
	if shoe == nil {
		return nil, &ConfigError{Reason: "shoe is required"}
	}
	if stack < 0 || stack > MaxStack {
		return nil, &ConfigError{Reason: fmt.Sprintf("stack %s outside [0, %s]", stack, MaxStack)}
	}

	cfg := defaultRoundConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	id := cfg.resolveID()

	return &Round{
		id:        id,
		shoe:      shoe,
		stack:     stack,
		phase:     PhaseBetting,
		logger:    cfg.logger.With("round", id),
		observers: cfg.observers,
		clock:     cfg.clock,
	}, nil
}

// ID returns the round identifier.
func (r *Round) ID() string { return r.id }

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Stack returns the player's chips not currently wagered.
func (r *Round) Stack() Chips { return r.stack }

// Err returns the StateError that stopped the round, if any.
func (r *Round) Err() error { return r.err }

// IsFinished reports whether the round has been settled.
func (r *Round) IsFinished() bool { return r.phase == PhaseFinished }

// NeedsReshuffle reports whether the shoe has passed its reshuffle point.
// It is only meaningful once the round is finished and always false before.
func (r *Round) NeedsReshuffle() bool {
	return r.phase == PhaseFinished && r.shoe.NeedsReshuffle()
}

// Settlements returns one result per played hand, main first. It is nil
// until the round is finished.
func (r *Round) Settlements() []Settlement {
	if r.settlements == nil {
		return nil
	}
	return append([]Settlement(nil), r.settlements...)
}

// ActiveHand returns the hand currently accepting actions.
func (r *Round) ActiveHand() (HandRole, bool) {
	switch r.phase {
	case PhasePlayerTurn:
		return MainHand, true
	case PhaseSplitTurn:
		return SplitHand, true
	}
	return 0, false
}

// LegalActions returns the actions currently permitted on a hand.
func (r *Round) LegalActions(role HandRole) ActionSet {
	return LegalActions(r.Snapshot(), role)
}

// Snapshot returns a copy of the round state for rendering.
func (r *Round) Snapshot() Snapshot {
	dealer := Evaluate(r.dealer)
	s := Snapshot{
		RoundID: r.id,
		Phase:   r.phase,
		Stack:   r.stack,
		Dealer: DealerView{
			Cards:     append([]deck.Card{}, r.dealer...),
			Total:     dealer.Total,
			Soft:      dealer.Soft,
			Blackjack: IsNatural(dealer, DealerHand, false),
			Status:    r.dealerStatus,
		},
		Main:             r.main.view(MainHand, r.split != nil),
		BetPlaced:        r.betPlaced,
		PlayerInputEnded: r.playerInputEnded,
		SplitInputEnded:  r.splitInputEnded,
	}
	if r.split != nil {
		v := r.split.view(SplitHand, true)
		s.Split = &v
	}
	return s
}

// SubmitBet places the round's bet and deals the opening cards. A rejected
// bet returns a *ValidationError and changes nothing.
func (r *Round) SubmitBet(amount Chips) error {
	if r.err != nil {
		return r.err
	}
	if r.phase != PhaseBetting || r.betPlaced {
		return &ValidationError{Field: "bet", Reason: "a bet has already been placed this round"}
	}
	if err := r.validateBet(amount); err != nil {
		return err
	}

	r.stack -= amount
	r.main.bet = amount
	r.main.status = Dealt
	r.betPlaced = true
	r.logger.Debug("Bet placed", "amount", amount, "stack", r.stack)
	r.publish(Event{Type: EventTypeBetPlaced, Role: MainHand, Amount: amount})

	r.phase = PhaseDealing
	return r.fail("deal", r.deal())
}

func (r *Round) validateBet(amount Chips) error {
	switch {
	case amount <= 0:
		return &ValidationError{Field: "bet", Reason: "must be greater than zero"}
	case !amount.IsWhole():
		return &ValidationError{Field: "bet", Reason: fmt.Sprintf("%s is not a whole number of chips", amount)}
	case amount > r.stack:
		return &ValidationError{Field: "bet", Reason: fmt.Sprintf("%s exceeds stack of %s", amount, r.stack)}
	}
	return nil
}

// SubmitAction applies an action to a player hand. Actions outside
// LegalActions return a *ValidationError and change nothing.
func (r *Round) SubmitAction(action Action, role HandRole) error {
	if r.err != nil {
		return r.err
	}
	legal := r.LegalActions(role)
	if !legal.Has(action) {
		return r.rejectAction(action, role, legal)
	}

	h := r.hand(role)
	r.logger.Debug("Player action", "hand", role, "action", action, "cards", h.cards)

	switch action {
	case Hit:
		r.publish(Event{Type: EventTypePlayerAction, Role: role, Action: action})
		if err := r.draw(role); err != nil {
			return r.fail("hit", err)
		}
		if Evaluate(h.cards).Bust() {
			return r.fail("hit", r.endHand(role))
		}

	case Stand:
		r.publish(Event{Type: EventTypePlayerAction, Role: role, Action: action})
		return r.fail("stand", r.endHand(role))

	case Double:
		r.stack -= h.bet
		r.publish(Event{Type: EventTypePlayerAction, Role: role, Action: action, Amount: h.bet})
		h.bet *= 2
		h.doubled = true
		if err := r.draw(role); err != nil {
			return r.fail("double", err)
		}
		return r.fail("double", r.endHand(role))

	case Split:
		r.stack -= r.main.bet
		r.publish(Event{Type: EventTypePlayerAction, Role: role, Action: action, Amount: r.main.bet})
		r.split = &playerHand{
			cards:  []deck.Card{r.main.cards[1]},
			bet:    r.main.bet,
			status: Dealt,
		}
		r.main.cards = []deck.Card{r.main.cards[0]}
		return r.fail("split", r.draw(MainHand))
	}
	return nil
}

func (r *Round) rejectAction(action Action, role HandRole, legal ActionSet) error {
	if !legal.Empty() {
		return &ValidationError{
			Field:  "action",
			Reason: fmt.Sprintf("%s is not allowed on the %s hand (allowed: %s)", action, role, legal),
		}
	}

	var reason string
	switch {
	case role == DealerHand:
		reason = "the dealer's hand cannot be played"
	case r.phase == PhaseBetting:
		reason = "place a bet first"
	case r.phase == PhaseFinished:
		reason = "the round is over"
	case role == SplitHand && r.split == nil:
		reason = "there is no split hand"
	case role == SplitHand && !r.playerInputEnded:
		reason = "the split hand waits for the main hand to finish"
	default:
		reason = fmt.Sprintf("the %s hand has finished", role)
	}
	return &ValidationError{Field: "action", Reason: reason}
}

func (r *Round) hand(role HandRole) *playerHand {
	if role == SplitHand {
		return r.split
	}
	return &r.main
}

func (r *Round) deal() error {
	for range 2 {
		if err := r.draw(MainHand); err != nil {
			return err
		}
	}
	if err := r.draw(DealerHand); err != nil {
		return err
	}

	r.phase = PhasePlayerTurn
	r.main.status = PlayerActing
	if IsNatural(Evaluate(r.main.cards), MainHand, false) {
		r.logger.Debug("Player has a natural blackjack")
		return r.endHand(MainHand)
	}
	return nil
}

// draw deals one card from the shoe to the given hand.
func (r *Round) draw(role HandRole) error {
	c, err := r.shoe.Draw()
	if err != nil {
		return err
	}

	var total int
	switch role {
	case DealerHand:
		r.dealer = append(r.dealer, c)
		total = Evaluate(r.dealer).Total
	default:
		h := r.hand(role)
		h.cards = append(h.cards, c)
		total = Evaluate(h.cards).Total
	}

	eventType := EventTypeCardDealt
	if role == DealerHand && r.dealerStatus == DealerRevealing && len(r.dealer) == 2 {
		eventType = EventTypeDealerRevealed
	}
	r.publish(Event{Type: eventType, Role: role, Card: c, Total: total})
	return nil
}

// endHand closes a hand's turn and moves the round on.
func (r *Round) endHand(role HandRole) error {
	switch role {
	case MainHand:
		r.main.status = PlayerDone
		r.playerInputEnded = true
		if r.split != nil {
			return r.startSplitTurn()
		}
	case SplitHand:
		r.split.status = PlayerDone
		r.splitInputEnded = true
	}
	return r.dealerTurn()
}

func (r *Round) startSplitTurn() error {
	r.phase = PhaseSplitTurn
	if err := r.draw(SplitHand); err != nil {
		return err
	}
	r.split.status = PlayerActing
	return nil
}

func (r *Round) dealerTurn() error {
	r.phase = PhaseDealerTurn
	if !r.anyHandLive() {
		r.logger.Debug("All player hands bust, dealer stays hidden")
		return r.settle()
	}

	r.dealerStatus = DealerRevealing
	if err := r.draw(DealerHand); err != nil {
		return err
	}

	score := Evaluate(r.dealer)
	mainNatural := IsNatural(Evaluate(r.main.cards), MainHand, r.split != nil)
	if !IsNatural(score, DealerHand, false) && !mainNatural {
		for score.Total < dealerStandsOn {
			if err := r.draw(DealerHand); err != nil {
				return err
			}
			score = Evaluate(r.dealer)
		}
	}
	r.dealerStatus = DealerDone
	r.logger.Debug("Dealer done", "cards", r.dealer, "total", score.Total)
	return r.settle()
}

func (r *Round) anyHandLive() bool {
	if !Evaluate(r.main.cards).Bust() {
		return true
	}
	return r.split != nil && !Evaluate(r.split.cards).Bust()
}

func (r *Round) settle() error {
	r.phase = PhaseSettling

	dealer := Evaluate(r.dealer)
	dealerNatural := IsNatural(dealer, DealerHand, false)
	splitOccurred := r.split != nil

	mainScore := Evaluate(r.main.cards)
	results := []Settlement{
		settle(MainHand, r.main.bet, mainScore, IsNatural(mainScore, MainHand, splitOccurred), dealer, dealerNatural),
	}
	if splitOccurred {
		sh := Evaluate(r.split.cards)
		results = append(results, settle(SplitHand, r.split.bet, sh, false, dealer, dealerNatural))
	}

	var credit Chips
	for _, s := range results {
		credit += s.Payout
	}
	if r.stack+credit > MaxStack {
		return &StateError{Op: "settle", Err: fmt.Errorf("stack %s would exceed maximum %s", r.stack+credit, MaxStack)}
	}

	r.stack += credit
	r.settlements = results
	for i := range results {
		r.publish(Event{Type: EventTypeHandSettled, Role: results[i].Role, Amount: results[i].Payout, Settlement: &results[i]})
	}

	r.phase = PhaseFinished
	r.logger.Info("Round finished", "payout", credit, "stack", r.stack, "dealer", dealer.Total)
	r.publish(Event{Type: EventTypeRoundFinished, Amount: r.stack})
	return nil
}

// fail latches err as the round's StateError. It returns nil for a nil err.
func (r *Round) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StateError
	if !errors.As(err, &se) {
		se = &StateError{Op: op, Err: err}
	}
	r.err = se
	r.phase = PhaseFailed
	r.logger.Error("Round failed", "op", se.Op, "error", se.Err)
	return se
}

func (r *Round) publish(e Event) {
	e.RoundID = r.id
	e.Time = r.clock.Now()
	for _, o := range r.observers {
		o.OnEvent(e)
	}
}
