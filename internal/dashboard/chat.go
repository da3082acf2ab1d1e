package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dimitrije/taskboard/internal/gateway"
	"github.com/dimitrije/taskboard/pkg/dto"
	"github.com/google/uuid"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Sources   []dto.ChatSource  `json:"sources,omitempty"`
	Metadata  *dto.ChatMetadata `json:"metadata,omitempty"`
}

// SendChat asks the assistant and returns its reply. The assistant's session
// id is carried into the next question. When the assistant cannot be reached
// the reply is an apology rather than an error.
func (d *Dashboard) SendChat(ctx context.Context, query string) (*ChatMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if d.chat == nil {
		return nil, errors.New("chat assistant is not configured")
	}
	if err := d.checkActive(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	sessionID := d.chatSession
	d.chatLog = append(d.chatLog, ChatMessage{
		ID:        uuid.NewString(),
		Role:      ChatRoleUser,
		Content:   query,
		Timestamp: time.Now(),
	})
	d.mu.Unlock()

	reply := ChatMessage{ID: uuid.NewString(), Role: ChatRoleAssistant}
	resp, err := d.chat.Chat(ctx, dto.ChatRequest{Query: query, SessionID: sessionID})
	if err != nil {
		d.logger.Warn("chat request failed", "error", err)
		reply.Content = "Sorry, I encountered an error. Please try again."
		if gateway.IsTransport(err) {
			reply.Content = "Connection error: Please ensure the backend server is running at " + d.apiURL
		}
	} else {
		reply.Content = resp.Answer
		reply.Sources = resp.Sources
		reply.Metadata = &resp.Metadata
	}
	reply.Timestamp = time.Now()

	d.mu.Lock()
	if err == nil && resp.SessionID != "" {
		d.chatSession = resp.SessionID
	}
	d.chatLog = append(d.chatLog, reply)
	d.mu.Unlock()

	return &reply, nil
}

func (d *Dashboard) ChatLog() []ChatMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ChatMessage, len(d.chatLog))
	copy(out, d.chatLog)
	return out
}
