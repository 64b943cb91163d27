package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Answerer is the TUI-facing subset of the retrieval service.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Model is the Bubble Tea model for the interactive ask session.
type Model struct {
	answerer Answerer
	input    textinput.Model
	viewport viewport.Model
	status   string
	thinking bool
	ready    bool
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

// New creates a new TUI model instance.
func New(answerer Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{answerer: answerer, input: ti, viewport: vp, status: "Ready. Ask away."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		return m, nil
	case answerMsg:
		m.thinking = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Answered %q", msg.question)
		m.viewport.SetContent(msg.answer)
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.thinking = true
				m.status = "Thinking..."
				m.input.Reset()
				return m, askCmd(m.answerer, q)
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(answerer Answerer, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := answerer.Answer(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docqa")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
