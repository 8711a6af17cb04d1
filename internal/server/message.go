package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

// MessageType identifies a websocket message
type MessageType string

const (
	// Client → Server
	MessageTypeBet       MessageType = "bet"
	MessageTypeAction    MessageType = "action"
	MessageTypeNextRound MessageType = "next_round"
	MessageTypeReshuffle MessageType = "reshuffle"

	// Server → Client
	MessageTypeState       MessageType = "state"
	MessageTypeRoundResult MessageType = "round_result"
	MessageTypeError       MessageType = "error"
	MessageTypeSessionOver MessageType = "session_over"
)

func (t MessageType) String() string {
	return string(t)
}

// Error codes sent in ErrorData
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeRejected       = "rejected"
	ErrCodeRoundFailed    = "round_failed"
	ErrCodeSessionOver    = "session_over"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

type BetData struct {
	Amount game.Chips `json:"amount"`
}

// ActionData applies Action to Hand. Without a hand the active one is used.
type ActionData struct {
	Action game.Action    `json:"action"`
	Hand   *game.HandRole `json:"hand,omitempty"`
}

// Server → Client Messages

type ShoeInfo struct {
	Remaining      int `json:"remaining"`
	ReshufflePoint int `json:"reshuffle_point"`
}

type StateData struct {
	Snapshot   game.Snapshot  `json:"snapshot"`
	Legal      []game.Action  `json:"legal"`
	ActiveHand *game.HandRole `json:"active_hand,omitempty"`
	Shoe       ShoeInfo       `json:"shoe"`
}

type StatsData struct {
	Rounds  int     `json:"rounds"`
	Hands   int     `json:"hands"`
	Net     float64 `json:"net"`
	WinRate float64 `json:"win_rate"`
	Return  float64 `json:"return"`
}

func statsData(s statistics.Statistics) StatsData {
	return StatsData{
		Rounds:  s.Rounds,
		Hands:   s.Hands,
		Net:     s.SumNet,
		WinRate: s.WinRate(),
		Return:  s.Return(),
	}
}

type RoundResultData struct {
	RoundID        string            `json:"round_id"`
	Settlements    []game.Settlement `json:"settlements"`
	Dealer         game.DealerView   `json:"dealer"`
	Stack          game.Chips        `json:"stack"`
	NeedsReshuffle bool              `json:"needs_reshuffle"`
	Stats          StatsData         `json:"stats"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SessionOverData struct {
	Reason string     `json:"reason"`
	Stack  game.Chips `json:"stack"`
	Stats  StatsData  `json:"stats"`
}
