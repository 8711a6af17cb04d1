package game

import (
	"fmt"
	"strings"
)

// HandRole identifies a hand slot at the table. It is passed explicitly to
// evaluation and legality checks instead of being inferred from engine flags.
type HandRole uint8

const (
	DealerHand HandRole = iota
	MainHand
	SplitHand
)

// String returns the string representation of the role
func (r HandRole) String() string {
	switch r {
	case DealerHand:
		return "dealer"
	case MainHand:
		return "main"
	case SplitHand:
		return "split"
	default:
		return "unknown"
	}
}

// ParseHandRole parses "main" or "split". The empty string means main.
func ParseHandRole(s string) (HandRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "main":
		return MainHand, nil
	case "split":
		return SplitHand, nil
	case "dealer":
		return DealerHand, nil
	}
	return 0, &ValidationError{Field: "hand", Reason: fmt.Sprintf("unknown hand %q", s)}
}

func (r HandRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *HandRole) UnmarshalText(text []byte) error {
	v, err := ParseHandRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Action is a player decision on one hand.
type Action uint8

const (
	Hit Action = iota
	Stand
	Double
	Split
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Double:
		return "double"
	case Split:
		return "split"
	default:
		return "unknown"
	}
}

// ParseAction parses an action name or its single-letter alias.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	case "double", "d":
		return Double, nil
	case "split", "p":
		return Split, nil
	}
	return 0, &ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", s)}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	v, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

var allActions = [...]Action{Hit, Stand, Double, Split}

// ActionSet is a set of actions.
type ActionSet uint8

// NewActionSet returns a set holding the given actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s = s.With(a)
	}
	return s
}

// With returns s with a added.
func (s ActionSet) With(a Action) ActionSet {
	return s | 1<<a
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return s&(1<<a) != 0
}

// Empty reports whether no action is in the set.
func (s ActionSet) Empty() bool {
	return s == 0
}

// List returns the actions in the set in Hit, Stand, Double, Split order.
func (s ActionSet) List() []Action {
	actions := make([]Action, 0, len(allActions))
	for _, a := range allActions {
		if s.Has(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

func (s ActionSet) String() string {
	names := make([]string, 0, len(allActions))
	for _, a := range s.List() {
		names = append(names, a.String())
	}
	return strings.Join(names, ", ")
}
