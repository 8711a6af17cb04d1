package tui

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/game"
)

// CommandKind identifies what the player typed.
type CommandKind uint8

const (
	CommandBet CommandKind = iota
	CommandAction
	CommandNext
	CommandQuit
	CommandHelp
)

// Command is a parsed line of player input.
type Command struct {
	Kind   CommandKind
	Amount game.Chips  // CommandBet
	Action game.Action // CommandAction
}

const helpText = "Commands: <amount> or bet <amount>, hit (h), stand (s), double (d), split (p), next (n), quit (q)"

// ParseCommand parses one line of input. A bare amount is a bet. An empty
// line means "next", which starts the following round once one is settled.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Kind: CommandNext}, nil
	}

	switch fields[0] {
	case "bet", "b":
		if len(fields) != 2 {
			return Command{}, &game.ValidationError{Field: "command", Reason: "usage: bet <amount>"}
		}
		return parseBet(fields[1])
	case "next", "n", "deal":
		return Command{Kind: CommandNext}, nil
	case "quit", "q", "exit":
		return Command{Kind: CommandQuit}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	}

	if action, err := game.ParseAction(fields[0]); err == nil {
		if len(fields) > 1 {
			return Command{}, &game.ValidationError{Field: "command", Reason: fmt.Sprintf("%s takes no arguments", action)}
		}
		return Command{Kind: CommandAction, Action: action}, nil
	}

	if len(fields) == 1 && fields[0][0] >= '0' && fields[0][0] <= '9' {
		return parseBet(fields[0])
	}
	return Command{}, &game.ValidationError{Field: "command", Reason: fmt.Sprintf("unknown command %q (type help)", fields[0])}
}

func parseBet(s string) (Command, error) {
	amount, err := game.ParseChips(s)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CommandBet, Amount: amount}, nil
}
