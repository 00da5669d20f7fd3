package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormEventRepository_CountByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()

	for _, et := range []analytics.EventType{
		analytics.EventCarView, analytics.EventCarView, analytics.EventCarView,
		analytics.EventCalculatorUsed,
	} {
		event, err := analytics.NewEvent(et, nil, nil, nil, map[string]any{"page": "/cars"})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, event))
	}

	old, err := analytics.NewEvent(analytics.EventChatOpened, nil, nil, nil, nil)
	require.NoError(t, err)
	old.CreatedAt = time.Now().AddDate(0, 0, -60)
	require.NoError(t, repo.Append(ctx, old))

	counts, err := repo.CountByType(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, analytics.EventCarView, counts[0].EventType)
	assert.Equal(t, int64(3), counts[0].Count)
	assert.Equal(t, analytics.EventCalculatorUsed, counts[1].EventType)
}

func TestGormChatRepository_ListBySession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"one", "two", "three", "four"} {
		msg, err := analytics.NewChatMessage("session-1", analytics.ChatRoleUser, content)
		require.NoError(t, err)
		msg.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Append(ctx, msg))
	}
	other, err := analytics.NewChatMessage("session-2", analytics.ChatRoleUser, "elsewhere")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, other))

	messages, err := repo.ListBySession(ctx, "session-1", 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "two", messages[0].Content)
	assert.Equal(t, "four", messages[2].Content)
}
