// Package tui is an interactive terminal table for playing blackjack locally.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjackbot/internal/blackjack"
	"github.com/lox/blackjackbot/internal/notify"
	"github.com/lox/blackjackbot/internal/table"
)

// Submitter applies a chat line on behalf of a player.
type Submitter interface {
	Handle(ctx context.Context, tableID, player, text string) (table.Reply, error)
}

// Options configures a Model.
type Options struct {
	Table    string
	Player   string
	TestMode bool
}

// Model is the Bubble Tea model for one table.
type Model struct {
	ctx       context.Context
	submit    Submitter
	events    <-chan blackjack.Event
	formatter *notify.Formatter
	logger    *log.Logger

	tableID string
	player  string

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	gameLog     []string
	view        tableView
	focusedPane int // 0 = log, 1 = input
	quitting    bool

	width       int
	height      int
	initialized bool

	testMode    bool
	capturedLog []string
}

type eventMsg struct{ ev blackjack.Event }

type eventsClosedMsg struct{}

type replyMsg struct {
	player string
	reply  table.Reply
	err    error
}

// New creates a model that submits input through submit and renders events
// read from events.
func New(ctx context.Context, submit Submitter, events <-chan blackjack.Event, formatter *notify.Formatter, logger *log.Logger, opts Options) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "!blackjack, !hit, !stand, !split, !bjstatus, !bjhelp"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = PromptStyle
	ti.TextStyle = InputTextStyle
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		submit:      submit,
		events:      events,
		formatter:   formatter,
		logger:      logger.WithPrefix("tui"),
		tableID:     opts.Table,
		player:      opts.Player,
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
		testMode:    opts.TestMode,
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case eventMsg:
		m.handleEvent(msg.ev)
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.logger.Debug("Event stream closed")
		return m, nil

	case replyMsg:
		m.handleReply(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if cmd := m.handleInput(line); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput interprets a submitted line. Lines starting with "/" are local
// commands; everything else goes to the table as chat.
func (m *Model) handleInput(line string) tea.Cmd {
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "/") {
		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "/quit", "/exit":
			m.quitting = true
			return tea.Sequence(tea.ClearScreen, tea.Quit)
		case "/as":
			if len(fields) != 2 {
				m.AddLogEntry(WarningStyle.Render("usage: /as <name>"))
				return nil
			}
			m.player = fields[1]
			m.AddLogEntry(InfoStyle.Render("You are now " + m.player))
			return nil
		default:
			m.AddLogEntry(WarningStyle.Render("Unknown local command " + fields[0]))
			return nil
		}
	}

	m.AddLogEntry(fmt.Sprintf("<%s> %s", m.player, line))

	ctx, submit, tableID, player := m.ctx, m.submit, m.tableID, m.player
	return func() tea.Msg {
		reply, err := submit.Handle(ctx, tableID, player, line)
		return replyMsg{player: player, reply: reply, err: err}
	}
}

func (m *Model) handleEvent(ev blackjack.Event) {
	if ev.TableID() != m.tableID {
		return
	}
	m.view.apply(ev)
	for _, line := range m.formatter.Format(ev) {
		m.AddLogEntry(line)
	}
}

func (m *Model) handleReply(msg replyMsg) {
	switch {
	case errors.Is(msg.err, table.ErrLoopStopped), errors.Is(msg.err, context.Canceled):
		m.logger.Error("Table is not running", "error", msg.err)
		m.AddLogEntry(ErrorStyle.Render("Table is not running"))
	case msg.err != nil:
		m.AddLogEntry(m.formatter.FormatError(msg.player, msg.err))
	case msg.reply.Command == table.CommandNone:
		m.AddLogEntry(InfoStyle.Render("Not a command. Type !bjhelp for the list."))
	case msg.reply.Help != nil:
		for _, line := range msg.reply.Help {
			m.AddLogEntry(line)
		}
	case msg.reply.Status != nil:
		m.AddLogEntry(m.formatter.FormatStatus(*msg.reply.Status))
	}
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
	actionPane := paneStyle(m.focusedPane == 1, m.width-2, actionHeight).Render(actionContent)

	sidebarContent := m.view.render(m.formatter, m.tableID)
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := m.height - actionHeight - 4 // borders of both rows
	sidebarPane := paneStyle(false, sidebarWidth, paneHeight).Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = max(paneHeight, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logPane := paneStyle(m.focusedPane == 0, logWidth, paneHeight).Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderActionPane() string {
	var content strings.Builder

	content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Playing as %s at %s", m.player, m.tableID)))
	content.WriteString("\n")
	content.WriteString(m.input.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • /as <name> to switch player • Ctrl+C to quit"))
	}
	return content.String()
}

// AddLogEntry appends a line to the table log.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Player returns the name input is currently sent as.
func (m *Model) Player() string {
	return m.player
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
