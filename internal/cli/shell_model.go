package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/alexanderramin/ridewait/internal/cli/formatter"
	"github.com/alexanderramin/ridewait/internal/contract"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/service"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// shellVisibleTurns is how many recent turns the view shows.
const shellVisibleTurns = 6

// graphMsg carries the result of one GenerateGraph call. description is
// empty for the initial default chart.
type graphMsg struct {
	description string
	update      *contract.GraphUpdate
	err         error
}

type resetMsg struct {
	sessionID string
	err       error
}

// shellModel is the bubbletea Model for the interactive chart shell.
type shellModel struct {
	ctx       context.Context
	svc       service.DashboardService
	ride      string
	sessionID string

	input   textinput.Model
	spinner spinner.Model
	width   int

	figure  domain.Figure
	turns   []domain.Turn
	notice  string
	busy    bool
	pending string

	history    []string
	historyIdx int

	quitting bool
}

func newShellModel(ctx context.Context, svc service.DashboardService, ride, sessionID string) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Placeholder = "describe a chart"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	return shellModel{
		ctx:       ctx,
		svc:       svc,
		ride:      ride,
		sessionID: sessionID,
		input:     ti,
		spinner:   sp,
	}
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.generate(""))
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len("ridewait ❯ ") - 1
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m.updatePrompt(msg)

	case graphMsg:
		return m.applyGraph(msg), nil

	case resetMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = formatter.StyleRed.Render("reset failed: " + msg.err.Error())
			return m, nil
		}
		m.sessionID = msg.sessionID
		m.turns = nil
		m.notice = formatter.Dim("Started a new conversation.")
		return m, m.generate("")

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if text == "" {
			return m, nil
		}
		m.addHistory(text)
		return m.execute(text)

	case tea.KeyUp:
		if m.historyIdx > 0 {
			m.historyIdx--
			m.input.SetValue(m.history[m.historyIdx])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
			m.input.SetValue(m.history[m.historyIdx])
			m.input.CursorEnd()
		} else {
			m.historyIdx = len(m.history)
			m.input.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute runs a slash command or submits text as a chart description.
func (m shellModel) execute(text string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch text {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		m.notice = formatter.FormatShellHelp()
		return m, nil
	case "/data":
		m.notice = formatter.FormatTable(m.svc.Table())
		return m, nil
	case "/reset":
		m.busy = true
		return m, tea.Batch(m.reset(), m.spinner.Tick)
	}
	if strings.HasPrefix(text, "/") {
		m.notice = formatter.StyleRed.Render("unknown command " + text + ", try /help")
		return m, nil
	}

	m.busy = true
	m.pending = text
	return m, tea.Batch(m.generate(text), m.spinner.Tick)
}

func (m shellModel) applyGraph(msg graphMsg) shellModel {
	m.busy = false
	m.pending = ""
	if msg.err != nil {
		text := msg.err.Error()
		if errors.Is(msg.err, llm.ErrMissingCredential) {
			text = "completion service is not configured; set OPENAI_KEY"
		}
		m.notice = formatter.StyleRed.Render(text)
		return m
	}

	m.figure = msg.update.Figure
	if msg.description != "" {
		m.turns = append(m.turns, domain.Turn{
			Seq:         msg.update.Turns,
			Description: msg.description,
			Code:        msg.update.Code,
			Error:       msg.update.Failure,
		})
	}
	return m
}

func (m shellModel) generate(description string) tea.Cmd {
	ctx, svc, id := m.ctx, m.svc, m.sessionID
	return func() tea.Msg {
		update, err := svc.GenerateGraph(ctx, id, contract.NewSubmission(description))
		return graphMsg{description: description, update: update, err: err}
	}
}

func (m shellModel) reset() tea.Cmd {
	ctx, svc, id := m.ctx, m.svc, m.sessionID
	return func() tea.Msg {
		next, err := svc.Reset(ctx, id)
		return resetMsg{sessionID: next, err: err}
	}
}

func (m *shellModel) addHistory(text string) {
	if n := len(m.history); n == 0 || m.history[n-1] != text {
		m.history = append(m.history, text)
	}
	m.historyIdx = len(m.history)
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}

	var b strings.Builder
	b.WriteString(formatter.FormatShellWelcome(m.ride, len(m.svc.Table().Rows)))
	b.WriteString("\n")
	b.WriteString(formatter.RenderBox("chart", strings.TrimRight(formatter.FormatFigure(m.figure), "\n")))
	b.WriteString("\n\n")

	turns := m.turns
	if len(turns) > shellVisibleTurns {
		b.WriteString(formatter.Dim("  …\n"))
		turns = turns[len(turns)-shellVisibleTurns:]
	}
	for _, t := range turns {
		b.WriteString(formatter.FormatTurn(t))
	}

	if m.notice != "" {
		b.WriteString(m.notice)
		if !strings.HasSuffix(m.notice, "\n") {
			b.WriteString("\n")
		}
	}
	if m.busy {
		label := "drawing " + m.pending
		if m.pending == "" {
			label = "working"
		}
		b.WriteString(m.spinner.View() + " " + formatter.Dim(label) + "\n")
	}

	b.WriteString(formatter.StylePurple.Render("ridewait") + " " + formatter.Dim("❯") + " ")
	b.WriteString(m.input.View())
	return b.String()
}
