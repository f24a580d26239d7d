package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PjVineeth/vocab-assist/internal/domain"
	"github.com/PjVineeth/vocab-assist/internal/engine"
	"github.com/PjVineeth/vocab-assist/internal/session"
)

// Options wires the conversation front-end.
type Options struct {
	Engine      *engine.Engine
	Session     *session.Session
	Transcriber domain.Transcriber // optional; enables the :audio command
	Synthesizer domain.Synthesizer // optional; saves spoken replies
	AudioDir    string
	Greeting    string
	Farewell    string
	Digest      string
}

// Model is the Bubble Tea model for the support-agent conversation.
type Model struct {
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
	quitting bool
}

// New creates a new conversation model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your query (:audio file.wav to speak, exit to end)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{opts: opts, input: ti, viewport: vp, status: "Agent ready."}
	if !opts.Engine.Ready() {
		m.status = "No guidance available - running in degraded mode."
	}
	opts.Session.EnsureGreeting(opts.Greeting)
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + digest, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	if strings.EqualFold(text, "exit") {
		m.status = "Agent: " + m.opts.Farewell
		m.quitting = true
		return m, tea.Quit
	}

	query := text
	if path, ok := strings.CutPrefix(text, ":audio "); ok {
		if m.opts.Transcriber == nil {
			m.status = "Speech input is not configured."
			return m, nil
		}
		transcribed, err := m.opts.Transcriber.Transcribe(context.Background(), strings.TrimSpace(path))
		if err != nil {
			m.status = "Didn't catch that. Please speak again..."
			return m, nil
		}
		query = transcribed
	}

	reply := m.opts.Engine.Answer(context.Background(), m.opts.Session, query)
	m.status = m.speak(reply)
	m.refreshTranscript()
	return m, nil
}

// speak synthesizes the reply to a WAV file when TTS is enabled and
// returns the status line to show.
func (m Model) speak(reply string) string {
	if m.opts.Synthesizer == nil {
		return "Reply ready."
	}
	audio, err := m.opts.Synthesizer.Synthesize(context.Background(), reply)
	if err != nil {
		return "Reply ready (speech synthesis failed)."
	}
	if err := os.MkdirAll(m.opts.AudioDir, 0o755); err != nil {
		return "Reply ready (could not save audio)."
	}
	name := fmt.Sprintf("turn-%03d.wav", m.opts.Session.Len())
	path := filepath.Join(m.opts.AudioDir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "Reply ready (could not save audio)."
	}
	return "Reply ready, audio saved to " + path
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(renderTranscript(m.opts.Session.History()))
	m.viewport.GotoBottom()
}

// View renders the TUI layout and the conversation transcript.
func (m Model) View() string {
	if m.quitting {
		return m.status + "\n"
	}
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Customer Support Agent")
	digest := digestStyle.Render(m.opts.Digest)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + digest + "\n" + transcript + "\n" + input + "\n" + status
}

func renderTranscript(turns []domain.Turn) string {
	if len(turns) == 0 {
		return "No conversation yet."
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("User: ") + t.User)
		b.WriteString("\n")
		b.WriteString(agentStyle.Render("Agent: ") + t.Agent)
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	digestStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	agentStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
