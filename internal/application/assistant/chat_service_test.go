package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Append(ctx context.Context, msg *analytics.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]analytics.ChatMessage, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.ChatMessage), args.Error(1)
}

type stubCompleter struct {
	reply    string
	err      error
	received []Message
}

func (c *stubCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	c.received = messages
	return c.reply, c.err
}

func conversation() ChatRequest {
	return ChatRequest{
		SessionID: "sess-1",
		Messages: []ChatTurn{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello! How can I help?"},
			{Role: "user", Content: "Do you have a Camry in stock?"},
		},
	}
}

func TestChatService_Reply(t *testing.T) {
	ctx := context.Background()

	t.Run("relays and stores both sides", func(t *testing.T) {
		repo := new(MockChatRepository)
		completer := &stubCompleter{reply: " Yes, a 2022 Camry. "}
		svc := NewChatService(completer, repo, Options{DealerName: "Almaty Motors"}, zap.NewNop())

		repo.On("Append", ctx, mock.MatchedBy(func(m *analytics.ChatMessage) bool {
			return m.Role == analytics.ChatRoleUser && m.Content == "Do you have a Camry in stock?" && m.SessionID == "sess-1"
		})).Return(nil).Once()
		repo.On("Append", ctx, mock.MatchedBy(func(m *analytics.ChatMessage) bool {
			return m.Role == analytics.ChatRoleAssistant && m.Content == "Yes, a 2022 Camry."
		})).Return(nil).Once()

		resp, err := svc.Reply(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, "Yes, a 2022 Camry.", resp.Message)
		repo.AssertExpectations(t)

		require.Len(t, completer.received, 4)
		assert.Equal(t, "system", completer.received[0].Role)
		assert.Contains(t, completer.received[0].Content, "Almaty Motors")
	})

	t.Run("no assistant configured", func(t *testing.T) {
		repo := new(MockChatRepository)
		repo.On("Append", ctx, mock.Anything).Return(nil).Once()
		svc := NewChatService(nil, repo, Options{}, zap.NewNop())

		resp, err := svc.Reply(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, FallbackReply, resp.Message)
		repo.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("assistant failure falls back", func(t *testing.T) {
		repo := new(MockChatRepository)
		repo.On("Append", ctx, mock.Anything).Return(nil)
		svc := NewChatService(&stubCompleter{err: errors.New("timeout")}, repo, Options{}, zap.NewNop())

		resp, err := svc.Reply(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, FallbackReply, resp.Message)
	})

	t.Run("empty completion falls back", func(t *testing.T) {
		svc := NewChatService(&stubCompleter{reply: "  "}, nil, Options{}, zap.NewNop())

		resp, err := svc.Reply(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, FallbackReply, resp.Message)
	})

	t.Run("transcript failure does not block the reply", func(t *testing.T) {
		repo := new(MockChatRepository)
		repo.On("Append", ctx, mock.Anything).Return(errors.New("db down"))
		svc := NewChatService(&stubCompleter{reply: "Sure"}, repo, Options{}, zap.NewNop())

		resp, err := svc.Reply(ctx, conversation())
		require.NoError(t, err)
		assert.Equal(t, "Sure", resp.Message)
	})

	t.Run("without session nothing is stored", func(t *testing.T) {
		repo := new(MockChatRepository)
		svc := NewChatService(&stubCompleter{reply: "Sure"}, repo, Options{}, zap.NewNop())
		req := conversation()
		req.SessionID = ""

		_, err := svc.Reply(ctx, req)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("requires a user message", func(t *testing.T) {
		svc := NewChatService(&stubCompleter{reply: "Sure"}, nil, Options{}, zap.NewNop())

		_, err := svc.Reply(ctx, ChatRequest{Messages: []ChatTurn{{Role: "assistant", Content: "Hello"}}})
		assert.Error(t, err)
	})

	t.Run("history is trimmed", func(t *testing.T) {
		completer := &stubCompleter{reply: "ok"}
		svc := NewChatService(completer, nil, Options{MaxHistory: 3}, zap.NewNop())
		req := ChatRequest{}
		for i := 0; i < 10; i++ {
			req.Messages = append(req.Messages, ChatTurn{Role: "user", Content: fmt.Sprintf("q%d", i)})
		}

		_, err := svc.Reply(ctx, req)
		require.NoError(t, err)
		require.Len(t, completer.received, 4)
		assert.Equal(t, "q7", completer.received[1].Content)
	})
}
