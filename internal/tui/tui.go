package tui

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Model is the Bubble Tea model for a local Blackjack session. It owns the
// table and drives it directly from typed commands.
type Model struct {
	table  *game.Table
	round  *game.Round
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	lastError   string
	rounds      int
	failed      bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// New creates a session model. Round events are written to the game log.
func New(rng *rand.Rand, config game.TableConfig, logger *log.Logger) (*Model, error) {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.Prompt = "> "

	m := &Model{
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}

	table, err := game.NewTable(rng, config,
		game.WithLogger(logger),
		game.WithObserver(game.ObserverFunc(m.onEvent)),
	)
	if err != nil {
		return nil, err
	}
	m.table = table
	m.startRound()
	return m, nil
}

// Table returns the session being played.
func (m *Model) Table() *game.Table { return m.table }

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if quit := m.Submit(input); quit {
					m.quitting = true
					return m, tea.Quit
				}
				return m, nil
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit handles one line of player input and reports whether the player
// asked to quit. Rejected input is shown in the action pane and changes
// nothing.
func (m *Model) Submit(input string) bool {
	m.lastError = ""

	cmd, err := ParseCommand(input)
	if err != nil {
		m.lastError = err.Error()
		return false
	}

	switch cmd.Kind {
	case CommandQuit:
		return true
	case CommandHelp:
		m.AddLogEntry(InfoStyle.Render(helpText))
		return false
	case CommandNext:
		m.next()
		return false
	}

	if m.failed || m.round == nil {
		m.lastError = "the session is over, type quit to exit"
		return false
	}

	switch cmd.Kind {
	case CommandBet:
		err = m.round.SubmitBet(cmd.Amount)
	case CommandAction:
		role, ok := m.round.ActiveHand()
		if !ok {
			role = game.MainHand
		}
		err = m.round.SubmitAction(cmd.Action, role)
	}
	m.handleResult(err)
	return false
}

func (m *Model) handleResult(err error) {
	if err != nil {
		if game.IsRecoverable(err) {
			m.lastError = err.Error()
			return
		}
		m.fail(err)
		return
	}
	if !m.round.IsFinished() {
		return
	}

	if _, err := m.table.Finish(m.round); err != nil {
		m.fail(err)
		return
	}
	if over, reason := m.table.IsOver(); over {
		m.AddLogEntry(WarningStyle.Render("Session over: " + reason))
		stats := m.table.Stats()
		m.AddLogEntry(stats.Summary())
	}
}

func (m *Model) fail(err error) {
	m.failed = true
	m.lastError = err.Error()
	m.logger.Error("Round failed", "error", err)
	m.AddLogEntry(ErrorStyle.Render("Round aborted: " + err.Error()))

	var se *game.StateError
	if errors.As(err, &se) && errors.Is(err, deck.ErrEmptyShoe) {
		m.AddLogEntry(InfoStyle.Render("The shoe ran out of cards."))
	}
}

func (m *Model) next() {
	if m.round != nil && !m.round.IsFinished() {
		if m.round.Snapshot().BetPlaced {
			m.lastError = "finish the current round first"
		} else {
			m.lastError = "place a bet to start the round"
		}
		return
	}
	if over, reason := m.table.IsOver(); over {
		m.lastError = "the session is over: " + reason
		return
	}
	m.startRound()
}

func (m *Model) startRound() {
	r, err := m.table.StartRound()
	if err != nil {
		if over, reason := m.table.IsOver(); over {
			m.AddLogEntry(WarningStyle.Render("Session over: " + reason))
			return
		}
		m.fail(err)
		return
	}
	m.round = r
	m.rounds++
	m.AddLogEntry("")
	m.AddLogEntry(HeaderStyle.Render(fmt.Sprintf(" Round %d ", m.rounds)))
	m.AddLogEntry(fmt.Sprintf("Stack %s. Place your bet.", m.table.Stack()))
}

func (m *Model) onEvent(e game.Event) {
	m.AddLogEntry(formatEvent(e))
}

func formatEvent(e game.Event) string {
	switch e.Type {
	case game.EventTypeHandSettled:
		if e.Settlement != nil {
			return netStyle(e.Settlement.Net).Render(e.String())
		}
		return WarningStyle.Render(e.String())
	case game.EventTypeRoundFinished:
		return InfoStyle.Render(e.String())
	}
	return e.String()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor(m.focusedPane == 1)).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(unfocusColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(paneColor(m.focusedPane == 0)).
		Width(logWidth).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func paneColor(focused bool) lipgloss.Color {
	if focused {
		return focusColor
	}
	return unfocusColor
}

func (m *Model) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows the stack, shoe and session statistics
func (m *Model) renderSidebarPane() string {
	var b strings.Builder

	b.WriteString(WarningStyle.Render("Stack: " + m.table.Stack().String()))
	b.WriteString("\n")
	if m.round != nil {
		if bet := m.round.Snapshot().TotalBet(); bet > 0 {
			b.WriteString(WarningStyle.Render("Bet: " + bet.String()))
			b.WriteString("\n")
		}
	}

	remaining, point := m.table.ShoeStatus()
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Shoe"))
	b.WriteString(fmt.Sprintf("\n  %d cards left\n  reshuffle at %d\n", remaining, point))

	stats := m.table.Stats()
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Session"))
	b.WriteString(fmt.Sprintf("\n  rounds %d\n  net %+.2f\n  won %d  lost %d\n  pushed %d\n",
		stats.Rounds, stats.SumNet, stats.Wins+stats.Blackjacks, stats.Losses+stats.Busts, stats.Pushes))

	return b.String()
}

// renderActionPane shows the hands, legal actions and the input line
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if m.round != nil {
		snap := m.round.Snapshot()
		if snap.BetPlaced {
			b.WriteString(m.renderDealer(snap.Dealer))
			b.WriteString("\n")
			b.WriteString(m.renderHand("Main", snap.Main))
			b.WriteString("\n")
			if snap.Split != nil {
				b.WriteString(m.renderHand("Split", *snap.Split))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(m.renderAvailableActions())
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString(ErrorStyle.Render(m.lastError))
		b.WriteString("\n")
	}

	m.actionInput.Placeholder = m.placeholder()
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • help for commands • Ctrl+C to quit"))
	}
	return b.String()
}

func (m *Model) placeholder() string {
	switch {
	case m.failed || m.round == nil:
		return "quit to exit"
	case !m.round.Snapshot().BetPlaced:
		return "Enter a bet, e.g. 10"
	case m.round.IsFinished():
		return "Enter for the next round, quit to exit"
	default:
		return "hit, stand, double or split"
	}
}

func (m *Model) renderDealer(d game.DealerView) string {
	cards := formatCards(d.Cards)
	if d.Status == game.DealerHidden {
		cards = strings.TrimSuffix(cards, "]") + " " + HiddenCardStyle.Render("??") + "]"
	}
	return DealerInfoStyle.Render("Dealer: ") + cards + DealerInfoStyle.Render(" "+formatTotal(d.Total, d.Soft, d.Blackjack))
}

func (m *Model) renderHand(name string, h game.HandView) string {
	info := fmt.Sprintf(" %s  bet %s", formatTotal(h.Total, h.Soft, h.Blackjack), h.Bet)
	if h.Doubled {
		info += " (doubled)"
	}
	return HandInfoStyle.Render(name+": ") + formatCards(h.Cards) + HandInfoStyle.Render(info)
}

// renderAvailableActions lists the legal actions for the active hand
func (m *Model) renderAvailableActions() string {
	if m.round == nil || m.failed {
		return InfoStyle.Render("Session over")
	}
	role, ok := m.round.ActiveHand()
	if !ok {
		if m.round.IsFinished() {
			return InfoStyle.Render("Round over")
		}
		return ActionsStyle.Render("Bet to deal")
	}

	var actions []string
	for _, a := range m.round.LegalActions(role).List() {
		actions = append(actions, SuccessStyle.Render("["+a.String()+"]"))
	}
	return ActionsStyle.Render(fmt.Sprintf("%s hand: ", capitalize(role.String()))) + strings.Join(actions, " ")
}

func formatTotal(total int, soft, blackjack bool) string {
	switch {
	case blackjack:
		return "Blackjack"
	case soft:
		return fmt.Sprintf("soft %d", total)
	default:
		return fmt.Sprintf("%d", total)
	}
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		formatted = append(formatted, cardStyle(card).Render(card.String()))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the game log entries.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Err returns the message for the last rejected command, if any.
func (m *Model) Err() string { return m.lastError }
