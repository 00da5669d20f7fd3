package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/autodealer/backend/internal/application/assistant"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(config.AssistantConfig{
		Endpoint: serverURL + "/v1/",
		APIKey:   "sk-test",
		Model:    "test-model",
		Timeout:  2 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.AssistantConfig{Model: "m"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(config.AssistantConfig{Endpoint: "http://localhost"}, nil)
	assert.Error(t, err)

	c, err := NewClient(config.AssistantConfig{Endpoint: "http://localhost/", Model: "m"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost", c.endpoint)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestClient_Complete(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"We have two Camrys."}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	reply, err := c.Complete(context.Background(), []app.Message{
		{Role: "system", Content: "You are a dealership assistant."},
		{Role: "user", Content: "Any Camry?"},
	})
	require.NoError(t, err)

	assert.Equal(t, "We have two Camrys.", reply)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Any Camry?", got.Messages[1].Content)
}

func TestClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), []app.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), []app.Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "no choices")
}

func TestClient_Complete_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, server.URL).Complete(ctx, []app.Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}
