package ui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// MoodActions is what the page can trigger. Each call reports its own
// progress through the page's Display; the returned error only ends the
// busy indicator.
type MoodActions interface {
	Connect(ctx context.Context) error
	GetMood(ctx context.Context) error
	SetMood(ctx context.Context, input string) error
}

// Page surfaces. Each one replaces the previous text; empty clears it.
type (
	StatusMsg string
	ErrorMsg  string
	ResultMsg string
)

type actionDoneMsg struct {
	action string
	err    error
}

const (
	actionConnect = "connect"
	actionGet     = "get"
	actionSet     = "set"
)

// PageDisplay forwards status, error and result lines to a running page.
// Lines sent before Attach are dropped.
type PageDisplay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Attach connects the display to a program, usually tea.Program.Send.
func (d *PageDisplay) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = send
}

func (d *PageDisplay) emit(msg tea.Msg) {
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (d *PageDisplay) Status(msg string) { d.emit(StatusMsg(msg)) }
func (d *PageDisplay) Error(msg string)  { d.emit(ErrorMsg(msg)) }
func (d *PageDisplay) Result(msg string) { d.emit(ResultMsg(msg)) }

// MoodPage is the interactive mood page: one input, a read action and a
// write action.
type MoodPage struct {
	ctx     context.Context
	actions MoodActions
	header  string

	input   textinput.Model
	spin    spinner.Model
	busy    int
	ready   bool
	status  string
	errLine string
	result  string
}

// NewMoodPage builds the page. header is rendered above the input.
func NewMoodPage(ctx context.Context, actions MoodActions, header string) MoodPage {
	ti := textinput.New()
	ti.Placeholder = "How are you feeling?"
	ti.CharLimit = 280
	ti.Width = 40
	ti.Prompt = "Mood ▸ "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = StyleChain

	// busy starts at one for the connect issued by Init.
	return MoodPage{ctx: ctx, actions: actions, header: header, input: ti, spin: sp, busy: 1}
}

func (m MoodPage) Init() tea.Cmd {
	return tea.Batch(m.run(actionConnect, ""), m.spin.Tick, textinput.Blink)
}

// start marks the page busy and returns the command running action.
func (m *MoodPage) start(action, input string) tea.Cmd {
	m.busy++
	if m.busy == 1 {
		return tea.Batch(m.run(action, input), m.spin.Tick)
	}
	return m.run(action, input)
}

func (m MoodPage) run(action, input string) tea.Cmd {
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		var err error
		switch action {
		case actionConnect:
			err = actions.Connect(ctx)
		case actionGet:
			err = actions.GetMood(ctx)
		case actionSet:
			err = actions.SetMood(ctx, input)
		}
		return actionDoneMsg{action: action, err: err}
	}
}

func (m MoodPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			cmd := m.start(actionSet, m.input.Value())
			return m, cmd
		case tea.KeyCtrlR:
			cmd := m.start(actionGet, "")
			return m, cmd
		}
	case StatusMsg:
		m.status = string(msg)
		return m, nil
	case ErrorMsg:
		m.errLine = string(msg)
		return m, nil
	case ResultMsg:
		m.result = string(msg)
		return m, nil
	case actionDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.action == actionConnect && msg.err == nil {
			m.ready = true
		}
		return m, nil
	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m MoodPage) View() string {
	var sb strings.Builder
	if m.header != "" {
		sb.WriteString(m.header + "\n")
	}

	status := m.status
	if m.busy > 0 {
		status = m.spin.View() + " " + status
	}
	if status != "" {
		sb.WriteString(Info(status) + "\n")
	}
	sb.WriteString("\n" + m.input.View() + "\n\n")

	if m.result != "" {
		sb.WriteString(Mood(m.result) + "\n")
	}
	if m.errLine != "" {
		sb.WriteString(Err(m.errLine) + "\n")
	}

	help := "[ enter ] set mood   [ ctrl+r ] get mood   [ esc ] quit"
	if !m.ready {
		help = "[ esc ] quit"
	}
	sb.WriteString("\n" + Meta(help) + "\n")
	return sb.String()
}
