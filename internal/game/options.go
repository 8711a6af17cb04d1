package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// RoundOption configures a Round during creation.
type RoundOption func(*roundConfig)

type roundConfig struct {
	id        string
	logger    *log.Logger
	observers []Observer
	clock     quartz.Clock
}

func defaultRoundConfig() *roundConfig {
	return &roundConfig{
		logger: log.New(io.Discard),
		clock:  quartz.NewReal(),
	}
}

// WithID sets the round identifier. Rounds get a random UUID by default.
func WithID(id string) RoundOption {
	return func(c *roundConfig) {
		c.id = id
	}
}

// WithLogger sets the logger used for round lifecycle messages.
func WithLogger(logger *log.Logger) RoundOption {
	return func(c *roundConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer for round events. May be repeated.
func WithObserver(o Observer) RoundOption {
	return func(c *roundConfig) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithClock sets the clock used to timestamp events.
func WithClock(clock quartz.Clock) RoundOption {
	return func(c *roundConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func (c *roundConfig) resolveID() string {
	if c.id == "" {
		c.id = uuid.NewString()
	}
	return c.id
}
