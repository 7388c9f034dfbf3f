package scholar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// fakeSpark runs a websocket server that replies to one request with the
// given frames.
func fakeSpark(t *testing.T, frames []string, gotRequest *requestFrame) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer func() {
			_ = conn.Close()
		}()
		if err := conn.ReadJSON(gotRequest); err != nil {
			t.Errorf("failed to read request: %v", err)
			return
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
	}))
}

func wsEndpoint(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v4.0/chat"
}

func TestChatStreamsTokens(t *testing.T) {
	var req requestFrame
	srv := fakeSpark(t, []string{
		`{"header": {"code": 0, "status": 1}, "payload": {"choices": {"text": [{"content": "明月"}]}}}`,
		`{"header": {"code": 0, "status": 2}, "payload": {"choices": {"text": [{"content": "几时有"}]}}}`,
	}, &req)
	defer srv.Close()

	c := NewClient(Config{AppID: "app", APIKey: "key", APISecret: "secret", Endpoint: wsEndpoint(srv)}, nil)

	var tokens []string
	full, err := c.Chat(context.Background(), "你好", func(tok string) {
		tokens = append(tokens, tok)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full != "明月几时有" {
		t.Fatalf("full response = %q", full)
	}
	if len(tokens) != 2 || tokens[0] != "明月" || tokens[1] != "几时有" {
		t.Fatalf("unexpected token stream: %v", tokens)
	}

	// The request carries the fixed identity and sampling parameters.
	if req.Header.AppID != "app" || req.Header.UID != chatUID {
		t.Fatalf("unexpected request header: %+v", req.Header)
	}
	if req.Parameter.Chat.Domain != chatDomain ||
		req.Parameter.Chat.Temperature != temperature ||
		req.Parameter.Chat.MaxTokens != maxChatTokens {
		t.Fatalf("unexpected chat parameters: %+v", req.Parameter.Chat)
	}
	if len(req.Payload.Message.Text) != 2 ||
		req.Payload.Message.Text[0].Role != "system" ||
		req.Payload.Message.Text[1] != (chatMessage{Role: "user", Content: "你好"}) {
		t.Fatalf("unexpected messages: %+v", req.Payload.Message.Text)
	}
}

func TestChatServiceError(t *testing.T) {
	var req requestFrame
	srv := fakeSpark(t, []string{
		`{"header": {"code": 0, "status": 1}, "payload": {"choices": {"text": [{"content": "部分"}]}}}`,
		`{"header": {"code": 10005, "message": "quota exhausted", "status": 1}}`,
	}, &req)
	defer srv.Close()

	c := NewClient(Config{Endpoint: wsEndpoint(srv)}, nil)
	partial, err := c.Chat(context.Background(), "你好", nil)
	if err == nil {
		t.Fatal("expected an error from a non-zero service code")
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("error does not surface the service message: %v", err)
	}
	if partial != "部分" {
		t.Fatalf("accumulated text lost: %q", partial)
	}
}

func TestAnalyzePoemPrompt(t *testing.T) {
	var req requestFrame
	srv := fakeSpark(t, []string{
		`{"header": {"code": 0, "status": 2}, "payload": {"choices": {"text": [{"content": "赏析"}]}}}`,
	}, &req)
	defer srv.Close()

	c := NewClient(Config{Endpoint: wsEndpoint(srv)}, nil)
	if _, err := c.AnalyzePoem(context.Background(), "静夜思", "李白", []string{"床前明月光，"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := req.Payload.Message.Text[1].Content
	for _, part := range []string{"《静夜思》", "李白", "床前明月光，"} {
		if !strings.Contains(prompt, part) {
			t.Fatalf("prompt missing %q: %s", part, prompt)
		}
	}
}

func TestSessionAppliesLatestExchange(t *testing.T) {
	var req requestFrame
	srv := fakeSpark(t, []string{
		`{"header": {"code": 0, "status": 2}, "payload": {"choices": {"text": [{"content": "答复"}]}}}`,
	}, &req)
	defer srv.Close()

	s := NewSession(NewClient(Config{Endpoint: wsEndpoint(srv)}, nil))
	stale := s.Begin()
	current := s.Begin()

	// The superseded exchange is skipped without touching the service.
	reply, applied, err := s.Ask(context.Background(), stale, "旧问题")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied || reply != "" {
		t.Fatalf("stale exchange must be dropped, got %q applied=%v", reply, applied)
	}

	reply, applied, err = s.Ask(context.Background(), current, "新问题")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied || reply != "答复" {
		t.Fatalf("latest exchange must apply, got %q applied=%v", reply, applied)
	}
	if req.Payload.Message.Text[1].Content != "新问题" {
		t.Fatalf("service saw the wrong message: %+v", req.Payload.Message.Text)
	}
}

func TestRequestFrameShape(t *testing.T) {
	var req requestFrame
	req.Header.AppID = "app"
	req.Parameter.Chat.Domain = chatDomain
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"app_id"`, `"max_tokens"`, `"domain"`, `"text"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("marshaled frame missing %s: %s", key, data)
		}
	}
}
