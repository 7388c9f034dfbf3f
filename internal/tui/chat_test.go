package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jinqiu/internal/scholar"
)

func newTestChatModel() *ChatModel {
	return NewChatModel(scholar.NewSession(scholar.NewClient(scholar.Config{}, nil)))
}

func sendQuestion(t *testing.T, m *ChatModel, question string) tea.Cmd {
	t.Helper()
	m.input.SetValue(question)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestChatModelSendAndReply(t *testing.T) {
	m := newTestChatModel()
	cmd := sendQuestion(t, m, "床前明月光是谁写的？")
	if cmd == nil {
		t.Fatal("sending a question must start an exchange")
	}
	if len(m.turns) != 1 || m.turns[0].done {
		t.Fatalf("expected one pending turn, got %+v", m.turns)
	}
	if m.input.Value() != "" {
		t.Fatal("input must clear after sending")
	}

	next, _ := m.Update(chatReplyMsg{token: m.turns[0].token, reply: "李白。", applied: true})
	m = next.(*ChatModel)
	if !m.turns[0].done || m.turns[0].answer != "李白。" {
		t.Fatalf("reply not applied: %+v", m.turns[0])
	}
}

func TestChatModelDropsSupersededReply(t *testing.T) {
	m := newTestChatModel()
	sendQuestion(t, m, "第一问")
	stale := m.turns[0].token
	sendQuestion(t, m, "第二问")

	if !m.turns[0].done || m.turns[0].errText == "" {
		t.Fatalf("in-flight turn must be marked superseded: %+v", m.turns[0])
	}

	// The stale exchange reports applied=false; nothing may change.
	next, _ := m.Update(chatReplyMsg{token: stale, reply: "迟到的答复", applied: false})
	m = next.(*ChatModel)
	if m.turns[0].answer != "" {
		t.Fatalf("stale reply must be dropped: %+v", m.turns[0])
	}
	if m.turns[1].done {
		t.Fatalf("newest turn must still be pending: %+v", m.turns[1])
	}
}

func TestChatModelServiceErrorSurfacesInline(t *testing.T) {
	m := newTestChatModel()
	sendQuestion(t, m, "提问")
	next, _ := m.Update(chatReplyMsg{
		token:   m.turns[0].token,
		applied: true,
		err:     errors.New("quota exhausted"),
	})
	m = next.(*ChatModel)
	if !strings.Contains(m.turns[0].errText, "quota exhausted") {
		t.Fatalf("service error not surfaced: %+v", m.turns[0])
	}
	if m.View() == "" {
		t.Fatal("empty view")
	}
}

func TestChatModelIgnoresEmptyQuestion(t *testing.T) {
	m := newTestChatModel()
	if cmd := sendQuestion(t, m, "   "); cmd != nil {
		t.Fatal("blank input must not start an exchange")
	}
	if len(m.turns) != 0 {
		t.Fatalf("unexpected turns: %+v", m.turns)
	}
}
