package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemRouter(h *SystemHandler) *gin.Engine {
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/health/ready", h.Ready)
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	router := systemRouter(NewSystemHandler("1.2.3"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestSystemHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		router := systemRouter(NewSystemHandler("dev",
			DependencyCheck{Name: "database", Ping: ok},
			DependencyCheck{Name: "redis", Ping: ok},
		))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "ready", data["status"])
		deps := data["dependencies"].(map[string]any)
		assert.Equal(t, "ok", deps["database"])
		assert.Equal(t, "ok", deps["redis"])
	})

	t.Run("one dependency down", func(t *testing.T) {
		router := systemRouter(NewSystemHandler("dev",
			DependencyCheck{Name: "database", Ping: ok},
			DependencyCheck{Name: "redis", Ping: down},
		))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "not_ready", data["status"])
		deps := data["dependencies"].(map[string]any)
		assert.Equal(t, "error", deps["redis"])
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("ping gets a deadline", func(t *testing.T) {
		var hadDeadline bool
		router := systemRouter(NewSystemHandler("dev", DependencyCheck{Name: "database", Ping: func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		}}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hadDeadline)
	})
}
