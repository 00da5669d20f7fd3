package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/autodealer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FallbackReply is returned whenever the assistant cannot answer
const FallbackReply = "Sorry, our assistant is unavailable right now. Leave your phone number in the inquiry form and a manager will call you back."

// DefaultMaxHistory bounds how many turns are forwarded to the assistant
const DefaultMaxHistory = 20

// Message is a single prompt entry for a completion backend
type Message struct {
	Role    string
	Content string
}

// Completer produces the next assistant message for a conversation
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Options configures the chat relay
type Options struct {
	DealerName string
	MaxHistory int
}

// ChatService relays website chat to an external assistant and keeps the transcript
type ChatService struct {
	completer Completer
	chatRepo  analytics.ChatRepository
	opts      Options
	logger    *zap.Logger
}

// NewChatService creates a new chat relay. completer may be nil when no
// assistant is configured; visitors then get FallbackReply.
func NewChatService(completer Completer, chatRepo analytics.ChatRepository, opts Options, logger *zap.Logger) *ChatService {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.DealerName == "" {
		opts.DealerName = "our dealership"
	}
	return &ChatService{completer: completer, chatRepo: chatRepo, opts: opts, logger: logger}
}

// Reply answers the last user turn of req
func (s *ChatService) Reply(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	last, ok := lastUserTurn(req.Messages)
	if !ok {
		return nil, shared.NewDomainError("INVALID_CHAT", "Conversation must contain a user message")
	}
	s.store(ctx, req.SessionID, analytics.ChatRoleUser, last.Content)

	if s.completer == nil {
		return &ChatResponse{Message: FallbackReply}, nil
	}

	reply, err := s.completer.Complete(ctx, s.prompt(req.Messages))
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty completion")
	}
	if err != nil {
		s.logger.Warn("Assistant request failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		return &ChatResponse{Message: FallbackReply}, nil
	}

	reply = strings.TrimSpace(reply)
	s.store(ctx, req.SessionID, analytics.ChatRoleAssistant, reply)
	return &ChatResponse{Message: reply}, nil
}

// SystemPrompt is the instruction sent ahead of every conversation
func (s *ChatService) SystemPrompt() string {
	return fmt.Sprintf("You are the online sales assistant of %s, a car dealership. "+
		"Answer questions about the cars in stock, financing and test drives briefly and politely. "+
		"If the visitor wants to buy or book a test drive, ask them to leave an inquiry so a manager can contact them.",
		s.opts.DealerName)
}

func (s *ChatService) prompt(turns []ChatTurn) []Message {
	if len(turns) > s.opts.MaxHistory {
		turns = turns[len(turns)-s.opts.MaxHistory:]
	}
	messages := make([]Message, 0, len(turns)+1)
	messages = append(messages, Message{Role: string(analytics.ChatRoleSystem), Content: s.SystemPrompt()})
	for _, t := range turns {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	return messages
}

// store keeps the transcript when the widget sent a session id. Failures are
// logged only; the visitor still gets an answer.
func (s *ChatService) store(ctx context.Context, sessionID string, role analytics.ChatRole, content string) {
	if sessionID == "" || s.chatRepo == nil {
		return
	}
	msg, err := analytics.NewChatMessage(sessionID, role, content)
	if err != nil {
		s.logger.Debug("Skipping invalid chat message", zap.Error(err))
		return
	}
	if err := s.chatRepo.Append(ctx, msg); err != nil {
		s.logger.Error("Failed to store chat message",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func lastUserTurn(turns []ChatTurn) (ChatTurn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == string(analytics.ChatRoleUser) && strings.TrimSpace(turns[i].Content) != "" {
			return turns[i], true
		}
	}
	return ChatTurn{}, false
}
