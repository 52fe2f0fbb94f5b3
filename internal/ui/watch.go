package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxWatchRows caps the change history kept on screen.
const maxWatchRows = 200

// MoodChangeMsg is sent when polling observes a different mood.
type MoodChangeMsg struct {
	Mood string // empty when the contract holds no mood
	At   time.Time
}

// WatchStatusMsg updates the polling status bar.
type WatchStatusMsg struct {
	Polls  int
	ErrMsg string
}

// WatchModel is the live mood stream for `mood watch`.
type WatchModel struct {
	Account  string
	Network  string
	Interval time.Duration

	Rows     []MoodChangeMsg
	Status   WatchStatusMsg
	Quitting bool

	cursor int
	spin   spinner.Model
}

// NewWatchModel builds a watch view for account on network.
func NewWatchModel(account, network string, interval time.Duration) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleChain
	return WatchModel{Account: account, Network: network, Interval: interval, spin: sp}
}

func (m WatchModel) Init() tea.Cmd { return m.spin.Tick }

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case MoodChangeMsg:
		// Latest first.
		m.Rows = append([]MoodChangeMsg{msg}, m.Rows...)
		if len(m.Rows) > maxWatchRows {
			m.Rows = m.Rows[:maxWatchRows]
		}
		if m.cursor > 0 && m.cursor < len(m.Rows)-1 {
			m.cursor++
		}

	case WatchStatusMsg:
		m.Status = msg
	}
	return m, nil
}

func (m WatchModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	title := fmt.Sprintf("Watching mood  ·  %s  ·  %s", TruncateAddr(m.Account), m.Network)
	sb.WriteString(StyleTitle.Render(title) + "\n")

	switch {
	case m.Status.ErrMsg != "":
		sb.WriteString(Err(m.Status.ErrMsg) + "\n\n")
	case m.Status.Polls > 0:
		sb.WriteString(Meta(fmt.Sprintf("%s polled %d time(s), every %s", m.spin.View(), m.Status.Polls, m.Interval)) + "\n\n")
	default:
		sb.WriteString(Meta(m.spin.View()+" reading mood…") + "\n\n")
	}

	if len(m.Rows) == 0 {
		sb.WriteString(Meta("  No reading yet") + "\n")
	} else {
		tbl := NewTable([]Column{{Title: "SEEN"}, {Title: "MOOD"}})
		tbl.SelIdx = m.cursor
		for _, row := range m.Rows {
			mood := row.Mood
			if mood == "" {
				mood = "(empty)"
			}
			tbl.AddRow(Row{row.At.Format("15:04:05"), mood})
		}
		sb.WriteString(tbl.Render())
		sb.WriteString(Meta(fmt.Sprintf("  %d change(s) seen", len(m.Rows))) + "\n")
	}

	sb.WriteString("\n" + Meta("[ ↑↓ ] scroll   [ q ] quit") + "\n")
	return sb.String()
}
