package server

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/game"
)

// Session plays one client's table. It turns client messages into engine
// calls and engine results into outgoing messages. It is not safe for
// concurrent use; each connection drives its own session from its read loop.
type Session struct {
	table  *game.Table
	round  *game.Round
	clock  quartz.Clock
	logger *log.Logger
	over   bool
}

// NewSession creates a table and starts its first round.
func NewSession(rng *rand.Rand, config game.TableConfig, clock quartz.Clock, logger *log.Logger) (*Session, error) {
	table, err := game.NewTable(rng, config, game.WithLogger(logger), game.WithClock(clock))
	if err != nil {
		return nil, err
	}
	s := &Session{table: table, clock: clock, logger: logger}
	if over, _ := table.IsOver(); over {
		s.over = true
		return s, nil
	}
	if s.round, err = table.StartRound(); err != nil {
		return nil, err
	}
	return s, nil
}

// Table returns the session's table.
func (s *Session) Table() *game.Table { return s.table }

// Greeting returns the messages sent when a client connects.
func (s *Session) Greeting() []*Message {
	if s.over {
		return []*Message{s.sessionOver()}
	}
	return []*Message{s.state()}
}

// Handle processes one client message and returns the replies.
func (s *Session) Handle(msg *Message) []*Message {
	if s.over {
		return []*Message{s.errorMessage(ErrCodeSessionOver, "the session is over")}
	}

	switch msg.Type {
	case MessageTypeBet:
		var data BetData
		if err := decode(msg.Data, &data); err != nil {
			return []*Message{s.errorMessage(ErrCodeInvalidMessage, "Failed to parse bet data: "+err.Error())}
		}
		return s.afterPlay(s.round.SubmitBet(data.Amount))

	case MessageTypeAction:
		var data ActionData
		if err := decode(msg.Data, &data); err != nil {
			return []*Message{s.errorMessage(ErrCodeInvalidMessage, "Failed to parse action data: "+err.Error())}
		}
		role, ok := s.round.ActiveHand()
		if data.Hand != nil {
			role, ok = *data.Hand, true
		}
		if !ok {
			return s.rejected(&game.ValidationError{Field: "action", Reason: "no hand is waiting for an action"})
		}
		return s.afterPlay(s.round.SubmitAction(data.Action, role))

	case MessageTypeNextRound:
		r, err := s.table.StartRound()
		if err != nil {
			return s.rejected(err)
		}
		s.round = r
		return []*Message{s.state()}

	case MessageTypeReshuffle:
		if err := s.table.Reshuffle(); err != nil {
			return s.rejected(err)
		}
		return []*Message{s.state()}
	}

	return []*Message{s.errorMessage(ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing data")
	}
	return json.Unmarshal(data, v)
}

func (s *Session) afterPlay(err error) []*Message {
	if err != nil {
		return s.rejected(err)
	}
	if !s.round.IsFinished() {
		return []*Message{s.state()}
	}

	rec, err := s.table.Finish(s.round)
	if err != nil {
		return s.rejected(err)
	}
	out := []*Message{s.state(), s.message(MessageTypeRoundResult, RoundResultData{
		RoundID:        rec.ID,
		Settlements:    rec.Settlements,
		Dealer:         rec.Dealer,
		Stack:          rec.StackAfter,
		NeedsReshuffle: s.round.NeedsReshuffle(),
		Stats:          statsData(s.table.Stats()),
	})}
	if over, _ := s.table.IsOver(); over {
		out = append(out, s.sessionOver())
	}
	return out
}

// rejected reports a failed request. Validation errors leave the session
// playable; anything else ends it.
func (s *Session) rejected(err error) []*Message {
	if game.IsRecoverable(err) {
		if over, _ := s.table.IsOver(); over {
			return []*Message{s.errorMessage(ErrCodeSessionOver, err.Error())}
		}
		return []*Message{s.errorMessage(ErrCodeRejected, err.Error())}
	}
	s.logger.Error("Session failed", "error", err)
	s.over = true
	return []*Message{
		s.errorMessage(ErrCodeRoundFailed, err.Error()),
		s.message(MessageTypeSessionOver, SessionOverData{
			Reason: err.Error(),
			Stack:  s.table.Stack(),
			Stats:  statsData(s.table.Stats()),
		}),
	}
}

func (s *Session) state() *Message {
	data := StateData{Legal: []game.Action{}}
	if s.round != nil {
		data.Snapshot = s.round.Snapshot()
		if role, ok := s.round.ActiveHand(); ok {
			data.ActiveHand = &role
			data.Legal = s.round.LegalActions(role).List()
		}
	}
	data.Shoe.Remaining, data.Shoe.ReshufflePoint = s.table.ShoeStatus()
	return s.message(MessageTypeState, data)
}

func (s *Session) sessionOver() *Message {
	s.over = true
	_, reason := s.table.IsOver()
	return s.message(MessageTypeSessionOver, SessionOverData{
		Reason: reason,
		Stack:  s.table.Stack(),
		Stats:  statsData(s.table.Stats()),
	})
}

// Expire ends the session after the client went quiet.
func (s *Session) Expire(reason string) *Message {
	s.over = true
	return s.message(MessageTypeSessionOver, SessionOverData{
		Reason: reason,
		Stack:  s.table.Stack(),
		Stats:  statsData(s.table.Stats()),
	})
}

func (s *Session) errorMessage(code, message string) *Message {
	return s.message(MessageTypeError, ErrorData{Code: code, Message: message})
}

func (s *Session) message(t MessageType, data any) *Message {
	msg, err := NewMessage(t, data, s.clock.Now())
	if err != nil {
		// every payload type here marshals cleanly
		panic(fmt.Sprintf("marshal %s: %v", t, err))
	}
	return msg
}
