package scholar

import (
	"context"
	"sync"
)

// Tracker issues monotonically increasing exchange tokens. Only the response
// carrying the latest token may be applied, giving last-request-wins
// semantics; stale in-flight responses are ignored on arrival rather than
// aborted at the transport level.
type Tracker struct {
	mu     sync.Mutex
	latest uint64
}

// Next issues the token for a new exchange, invalidating all earlier ones.
func (t *Tracker) Next() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	return t.latest
}

// Latest reports whether token still identifies the newest exchange.
func (t *Tracker) Latest(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.latest
}

// Session runs chat exchanges for an interactive frontend with
// last-request-wins semantics: each exchange carries a token from Begin, and
// a reply whose token has been superseded by a later Begin is dropped on
// arrival rather than aborted at the transport level.
type Session struct {
	client  *Client
	tracker Tracker
}

// NewSession wraps client with exchange tracking.
func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Begin issues the token for a new exchange, superseding earlier ones.
func (s *Session) Begin() uint64 {
	return s.tracker.Next()
}

// Ask runs the exchange for token and returns the reply. A superseded
// exchange is skipped or its reply discarded; applied reports whether the
// reply (or its error) should reach the user.
func (s *Session) Ask(ctx context.Context, token uint64, message string) (reply string, applied bool, err error) {
	if !s.tracker.Latest(token) {
		return "", false, nil
	}
	reply, err = s.client.Chat(ctx, message, nil)
	if !s.tracker.Latest(token) {
		return "", false, nil
	}
	return reply, true, err
}
