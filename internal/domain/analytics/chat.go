package analytics

import (
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChatRole is the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// MaxChatMessageLength bounds a single stored message
const MaxChatMessageLength = 4000

// ChatMessage is one turn of a website chat session
type ChatMessage struct {
	ID        uuid.UUID
	SessionID string
	Role      ChatRole
	Content   string
	CreatedAt time.Time
}

// NewChatMessage validates and creates a chat message. System prompts are never stored.
func NewChatMessage(sessionID string, role ChatRole, content string) (*ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || len(sessionID) > 100 {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session id is required")
	}
	if role != ChatRoleUser && role != ChatRoleAssistant {
		return nil, shared.NewDomainError("INVALID_ROLE", "Only user and assistant messages are stored")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_CONTENT", "Message cannot be empty")
	}
	if len(content) > MaxChatMessageLength {
		content = content[:MaxChatMessageLength]
	}
	return &ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}
