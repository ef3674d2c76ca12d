// Package tui is the interactive terminal host for the query engine.
//
// Keystrokes feed Engine.Search directly. Engine work is scheduled on a queue
// and each queued task is delivered back to the bubbletea loop as a stepMsg,
// so scans run one chunk per message and input stays responsive while a long
// scan is in flight.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dshills/godocsearch/internal/searcher"
	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/pkg/types"
)

// stepMsg asks the model to run the next queued engine task
type stepMsg struct{}

// Model is the browse screen: a query input above a ranked result list
type Model struct {
	input   textinput.Model
	engine  *searcher.Engine
	queue   *searcher.QueueScheduler
	total   int
	results searcher.Results

	// stepping is set while a stepMsg is in flight
	stepping bool

	selected int
	chosen   *types.RankedEntry
	width    int
	height   int
}

// New creates the browse model over a loaded index
func New(index *searchindex.Artifact, cfg searcher.Config) (*Model, error) {
	ti := textinput.New()
	ti.Placeholder = "Search packages, types, methods..."
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.TextStyle = textStyle
	ti.PlaceholderStyle = mutedStyle
	ti.Focus()

	m := &Model{
		input: ti,
		queue: &searcher.QueueScheduler{},
	}
	if index != nil {
		m.total = len(index.Entries)
	}

	engine, err := searcher.NewEngine(index, m.queue, m.onResults, searcher.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	m.engine = engine
	return m, nil
}

// Init starts the cursor blinking
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Chosen returns the entry picked with enter, if any
func (m *Model) Chosen() (types.RankedEntry, bool) {
	if m.chosen == nil {
		return types.RankedEntry{}, false
	}
	return *m.chosen, true
}

// Results returns the latest delivery from the engine
func (m *Model) Results() searcher.Results {
	return m.results
}

func (m *Model) onResults(r searcher.Results) {
	m.results = r
	if m.selected >= len(r.Entries) {
		m.selected = 0
	}
}

// pump returns a command that delivers one stepMsg when engine work is queued
func (m *Model) pump() tea.Cmd {
	if m.stepping || m.queue.Pending() == 0 {
		return nil
	}
	m.stepping = true
	return func() tea.Msg { return stepMsg{} }
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepMsg:
		m.stepping = false
		m.queue.RunNext()
		return m, m.pump()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.selected < len(m.results.Entries) {
				entry := m.results.Entries[m.selected]
				m.chosen = &entry
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if n := len(m.results.Entries); n > 0 {
				m.selected = (m.selected - 1 + n) % n
			}
			return m, nil

		case "down", "ctrl+n", "tab":
			if n := len(m.results.Entries); n > 0 {
				m.selected = (m.selected + 1) % n
			}
			return m, nil
		}
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != previous {
		m.selected = 0
		m.engine.Search(m.input.Value())
		return m, tea.Batch(cmd, m.pump())
	}
	return m, cmd
}

// View renders the screen
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	header := headerStyle.Render("godocsearch") + "  " +
		mutedStyle.Render(humanize.Comma(int64(m.total))+" entries")

	var list string
	switch {
	case m.input.Value() == "":
		list = mutedStyle.Render("Type to search")
	case len(m.results.Entries) == 0 && m.results.Final:
		list = mutedStyle.Render("No matches")
	default:
		rows := make([]string, 0, len(m.results.Entries))
		for i, entry := range m.results.Entries {
			rows = append(rows, m.renderEntry(entry, i == m.selected, width))
		}
		list = strings.Join(rows, "\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.input.View(),
		"",
		list,
		"",
		m.statusLine(),
	)
}

func (m *Model) renderEntry(entry types.RankedEntry, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	title := indicator + ownerStyle.Render(entry.OwnerName) + labelStyle.Render(entry.MemberLabel)
	row := title
	if snippet := searchindex.PlainText(entry.DescriptionSnippet); snippet != "" {
		row += "\n" + snippetStyle.Render(truncate(snippet, width-6))
	}

	if selected {
		return selectStyle.Width(width).Render(row)
	}
	return row
}

func (m *Model) statusLine() string {
	state := m.engine.State().String()
	if m.results.Total > 0 && !m.results.Final {
		state = fmt.Sprintf("scanning %d/%d", m.results.Scanned, m.results.Total)
	}
	status := statusStyle.Render(state)
	help := mutedStyle.Render("up/down move | enter open | esc quit")
	return status + "  " + help
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if n <= 3 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
