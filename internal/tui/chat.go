package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"jinqiu/internal/scholar"
)

type chatReplyMsg struct {
	token   uint64
	reply   string
	applied bool
	err     error
}

// chatTurn is one question and its eventual answer.
type chatTurn struct {
	token    uint64
	question string
	answer   string
	errText  string
	done     bool
}

// ChatModel is the interactive scholar conversation. Sending a question
// while an earlier one is still in flight supersedes it: the stale reply is
// dropped on arrival and only the newest exchange reaches the transcript.
type ChatModel struct {
	session *scholar.Session

	turns []chatTurn
	input textinput.Model
	view  viewport.Model

	width  int
	height int
}

// NewChatModel constructs the conversation over the given session.
func NewChatModel(session *scholar.Session) *ChatModel {
	input := textinput.New()
	input.Placeholder = "向国学大师提问"
	input.CharLimit = 256
	input.Focus()

	return &ChatModel{
		session: session,
		input:   input,
		view:    viewport.New(80, 20),
	}
}

// Init implements tea.Model.
func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		if msg.Height > 6 {
			m.view.Height = msg.Height - 4
		}
		m.refreshTranscript()
		return m, nil
	case chatReplyMsg:
		return m.applyReply(msg)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.send()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send issues a fresh exchange for the typed question. Any turn still in
// flight is marked superseded; its reply will arrive stale and be ignored.
func (m *ChatModel) send() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}
	for i := range m.turns {
		if !m.turns[i].done {
			m.turns[i].done = true
			m.turns[i].errText = "已被新问题取代"
		}
	}
	token := m.session.Begin()
	m.turns = append(m.turns, chatTurn{token: token, question: question})
	m.input.SetValue("")
	m.refreshTranscript()
	return m.ask(token, question)
}

func (m *ChatModel) ask(token uint64, question string) tea.Cmd {
	return func() tea.Msg {
		reply, applied, err := m.session.Ask(context.Background(), token, question)
		return chatReplyMsg{token: token, reply: reply, applied: applied, err: err}
	}
}

func (m *ChatModel) applyReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	if !msg.applied {
		// A newer question superseded this exchange.
		return m, nil
	}
	for i := range m.turns {
		if m.turns[i].token != msg.token {
			continue
		}
		m.turns[i].done = true
		if msg.err != nil {
			m.turns[i].errText = "抱歉，回答失败：" + msg.err.Error()
		} else {
			m.turns[i].answer = msg.reply
		}
		break
	}
	m.refreshTranscript()
	return m, nil
}

func (m *ChatModel) refreshTranscript() {
	var b strings.Builder
	for i := range m.turns {
		t := &m.turns[i]
		b.WriteString(selectedStyle.Render("问  " + t.question))
		b.WriteString("\n")
		switch {
		case t.errText != "":
			b.WriteString(errorStyle.Render(t.errText))
			b.WriteString("\n")
		case !t.done:
			b.WriteString(mutedStyle.Render("思索中…"))
			b.WriteString("\n")
		default:
			b.WriteString(renderMarkdown(t.answer, m.transcriptWidth()))
		}
		b.WriteString("\n")
	}
	m.view.SetContent(b.String())
	m.view.GotoBottom()
}

func (m *ChatModel) transcriptWidth() int {
	if m.width > 4 {
		return m.width - 4
	}
	return 76
}

// View implements tea.Model.
func (m *ChatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("问学"))
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("enter 提问 · esc 退出"))
	return b.String()
}
