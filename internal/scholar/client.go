package scholar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultEndpoint is the Spark v4.0 Ultra chat endpoint.
const DefaultEndpoint = "wss://spark-api.xf-yun.com/v4.0/chat"

// Fixed sampling parameters for the chat service.
const (
	chatDomain    = "4.0Ultra"
	chatUID       = "user_default"
	temperature   = 0.5
	maxChatTokens = 4096
)

const systemPrompt = "你是一位博学多才的国学大师，精通唐诗宋词。请用优雅、古风的白话文回答用户的问题。"

// Config carries the service credentials.
type Config struct {
	AppID     string
	APIKey    string
	APISecret string
	Endpoint  string
}

// Client is a Spark chat client. One websocket connection serves one
// exchange; the connection closes when the response completes.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *zap.Logger
}

// NewClient builds a client. An empty endpoint falls back to the default; a
// nil logger falls back to a no-op logger.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, dialer: websocket.DefaultDialer, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestFrame struct {
	Header struct {
		AppID string `json:"app_id"`
		UID   string `json:"uid"`
	} `json:"header"`
	Parameter struct {
		Chat struct {
			Domain      string  `json:"domain"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
		} `json:"chat"`
	} `json:"parameter"`
	Payload struct {
		Message struct {
			Text []chatMessage `json:"text"`
		} `json:"message"`
	} `json:"payload"`
}

type responseFrame struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"header"`
	Payload *struct {
		Choices struct {
			Text []struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
}

// Chat sends one user message and streams the response tokens through
// onToken until the service marks the exchange complete. A non-zero service
// code aborts the exchange with an error; the accumulated text so far is
// still returned.
func (c *Client) Chat(ctx context.Context, message string, onToken func(string)) (string, error) {
	signed, err := SignURL(c.cfg.Endpoint, c.cfg.APIKey, c.cfg.APISecret, time.Now())
	if err != nil {
		return "", err
	}

	conn, _, err := c.dialer.DialContext(ctx, signed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect to chat service: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	var req requestFrame
	req.Header.AppID = c.cfg.AppID
	req.Header.UID = chatUID
	req.Parameter.Chat.Domain = chatDomain
	req.Parameter.Chat.Temperature = temperature
	req.Parameter.Chat.MaxTokens = maxChatTokens
	req.Payload.Message.Text = []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: message},
	}
	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("failed to send chat request: %w", err)
	}

	var full strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}
		var frame responseFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return full.String(), fmt.Errorf("failed to read chat response: %w", err)
		}
		if frame.Header.Code != 0 {
			c.logger.Warn("chat service error",
				zap.Int("code", frame.Header.Code),
				zap.String("message", frame.Header.Message))
			return full.String(), fmt.Errorf("chat service error %d: %s", frame.Header.Code, frame.Header.Message)
		}
		if frame.Payload != nil && len(frame.Payload.Choices.Text) > 0 {
			token := frame.Payload.Choices.Text[0].Content
			full.WriteString(token)
			if onToken != nil {
				onToken(token)
			}
		}
		if frame.Header.Status == 2 {
			return full.String(), nil
		}
	}
}

// AnalyzePoem asks the service for an appreciation of one poem.
func (c *Client) AnalyzePoem(ctx context.Context, title, author string, content []string, onToken func(string)) (string, error) {
	prompt := fmt.Sprintf(
		"请赏析这首诗：\n题目：《%s》\n作者：%s\n内容：\n%s\n\n请从意象、意境、情感等方面进行深度赏析。",
		title, author, strings.Join(content, "\n"))
	return c.Chat(ctx, prompt, onToken)
}
