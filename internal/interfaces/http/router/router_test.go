package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/autodealer/backend/internal/interfaces/http/handler"
	"github.com/autodealer/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g.GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			PATCH("/items/:id", ok).
			DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
			{http.MethodPatch, "/api/v1/test/items/1"},
			{http.MethodDelete, "/api/v1/test/items/1"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tc.method)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("applies middleware and skips nil", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(nil, func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/items", nil, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/items", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("subgroups inherit middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("outer", "").Use(func(c *gin.Context) {
			c.Header("X-Outer", "1")
			c.Next()
		})
		inner := g.Group("inner", "/inner").Use(func(c *gin.Context) {
			c.Header("X-Inner", "1")
			c.Next()
		})
		inner.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/inner", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-Outer"))
		assert.Equal(t, "1", w.Header().Get("X-Inner"))
	})

	t.Run("lists routes with prefixes", func(t *testing.T) {
		g := NewDomainGroup("cars", "/cars")
		g.POST("", func(*gin.Context) {}).GET("/:id", func(*gin.Context) {})
		g.Group("images", "/:id/images").POST("", func(*gin.Context) {})

		assert.Equal(t, []RouteInfo{
			{Method: http.MethodPost, Path: "/cars"},
			{Method: http.MethodGet, Path: "/cars/:id"},
			{Method: http.MethodPost, Path: "/cars/:id/images"},
		}, g.Routes())
		assert.Equal(t, "cars", g.Name())
		assert.Equal(t, "/cars", g.Prefix())
	})
}

type apiFixture struct {
	engine *gin.Engine
	jwt    *auth.JWTService
}

func newAPIFixture(t *testing.T, publicLimit gin.HandlerFunc) *apiFixture {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-32-characters",
		RefreshSecret:          "router-test-refresh-32-characters",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "router-test",
		MaxRefreshCount:        1,
	})
	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: jwtService}
	perm := middleware.PermissionConfig{}

	// Services stay nil: every request below is answered by a guard or by
	// request validation before a service is reached.
	h := Handlers{
		Auth:      handler.NewAuthHandler(nil, config.CookieConfig{}, config.JWTConfig{}),
		Car:       handler.NewCarHandler(nil),
		Quote:     handler.NewQuoteHandler(nil),
		Lead:      handler.NewLeadHandler(nil),
		Review:    handler.NewReviewHandler(nil),
		Stats:     handler.NewStatsHandler(nil),
		Admin:     handler.NewAdminHandler(nil, nil),
		Analytics: handler.NewAnalyticsHandler(nil),
		Chat:      handler.NewChatHandler(nil),
	}
	g := Guards{
		Auth:         middleware.JWTAuth(jwtCfg),
		OptionalAuth: middleware.OptionalJWTAuth(jwtCfg),
		Staff:        middleware.RequireStaff(perm),
		Admin:        middleware.RequireAdmin(perm),
		PublicLimit:  publicLimit,
	}

	engine := gin.New()
	r := NewRouter(engine)
	for _, group := range APIGroups(h, g) {
		r.Register(group)
	}
	r.Setup()
	SystemRoutes(engine, handler.NewSystemHandler("test"))
	return &apiFixture{engine: engine, jwt: jwtService}
}

func (f *apiFixture) token(t *testing.T, roles ...string) string {
	t.Helper()
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: uuid.New(),
		Email:  "someone@example.com",
		Roles:  roles,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func (f *apiFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestAPIGroups_RouteTable(t *testing.T) {
	h := Handlers{
		Auth: &handler.AuthHandler{}, Car: &handler.CarHandler{}, Quote: &handler.QuoteHandler{},
		Lead: &handler.LeadHandler{}, Review: &handler.ReviewHandler{}, Stats: &handler.StatsHandler{},
		Admin: &handler.AdminHandler{}, Analytics: &handler.AnalyticsHandler{}, Chat: &handler.ChatHandler{},
	}

	var got []string
	for _, g := range APIGroups(h, Guards{}) {
		for _, r := range g.Routes() {
			got = append(got, r.Method+" "+r.Path)
		}
	}
	sort.Strings(got)

	want := []string{
		"DELETE /admin/reviews/:id",
		"DELETE /admin/users/:id/roles/:role",
		"DELETE /cars/:id",
		"GET /admin/analytics",
		"GET /admin/managers",
		"GET /admin/reviews",
		"GET /admin/stats/cars",
		"GET /admin/stats/leads",
		"GET /auth/me",
		"GET /cars",
		"GET /cars/:id",
		"GET /cars/:id/quote",
		"GET /cars/:id/quote.pdf",
		"GET /cars/featured",
		"GET /client/leads",
		"GET /lead-status",
		"GET /leads",
		"GET /leads/:id",
		"GET /rate",
		"GET /reviews",
		"GET /scores/leaderboard",
		"GET /scores/me",
		"PATCH /admin/reviews/:id/approval",
		"PATCH /cars/:id/status",
		"PATCH /leads/:id/status",
		"POST /admin/managers",
		"POST /admin/users/:id/roles",
		"POST /analytics/events",
		"POST /auth/login",
		"POST /auth/logout",
		"POST /auth/refresh",
		"POST /auth/register",
		"POST /calculator",
		"POST /cars",
		"POST /cars/:id/images",
		"POST /cars/:id/images/upload-url",
		"POST /chat",
		"POST /leads",
		"POST /leads/:id/claim",
		"POST /rate",
		"PUT /admin/leads/:id",
		"PUT /cars/:id",
	}
	assert.Equal(t, want, got)
}

func TestAPIGroups_Gates(t *testing.T) {
	f := newAPIFixture(t, nil)
	client := f.token(t)
	manager := f.token(t, "manager")
	admin := f.token(t, "admin")
	leadPath := "/api/v1/leads/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"lead list needs a session", http.MethodGet, "/api/v1/leads", "", http.StatusUnauthorized},
		{"clients cannot list leads", http.MethodGet, "/api/v1/leads", client, http.StatusForbidden},
		{"clients cannot claim", http.MethodPost, leadPath + "/claim", client, http.StatusForbidden},
		{"anonymous cannot change status", http.MethodPatch, leadPath + "/status", "", http.StatusUnauthorized},
		{"leaderboard is staff only", http.MethodGet, "/api/v1/scores/leaderboard", client, http.StatusForbidden},
		{"client dashboard needs a session", http.MethodGet, "/api/v1/client/leads", "", http.StatusUnauthorized},
		{"managers cannot create managers", http.MethodPost, "/api/v1/admin/managers", manager, http.StatusForbidden},
		{"managers cannot moderate reviews", http.MethodGet, "/api/v1/admin/reviews", manager, http.StatusForbidden},
		{"managers cannot edit cars", http.MethodPost, "/api/v1/cars", manager, http.StatusForbidden},
		{"managers cannot see analytics", http.MethodGet, "/api/v1/admin/analytics", manager, http.StatusForbidden},
		{"anonymous cannot delete cars", http.MethodDelete, "/api/v1/cars/" + uuid.NewString(), "", http.StatusUnauthorized},
		{"logout needs a session", http.MethodPost, "/api/v1/auth/logout", "", http.StatusUnauthorized},
		// The gates pass; the handler rejects the malformed id before any service call
		{"managers reach lead detail", http.MethodGet, "/api/v1/leads/not-a-uuid", manager, http.StatusBadRequest},
		{"admins reach lead override", http.MethodPut, "/api/v1/admin/leads/not-a-uuid", admin, http.StatusBadRequest},
		{"admins reach car edits", http.MethodPut, "/api/v1/cars/not-a-uuid", admin, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAPIGroups_PublicRoutesNeedNoSession(t *testing.T) {
	f := newAPIFixture(t, nil)

	// A malformed tracking token is rejected without touching storage
	w := f.do(http.MethodGet, "/api/v1/lead-status?token=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// An invalid bearer on a public route is ignored, not rejected
	w = f.do(http.MethodGet, "/api/v1/lead-status?token=nope", "garbage")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIGroups_PublicFormsAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	f := newAPIFixture(t, middleware.RateLimit(limiter))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		return w
	}

	// First request passes the limiter and fails validation
	assert.Equal(t, http.StatusBadRequest, post().Code)
	w := post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// Reads are not limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/lead-status?token=x", "").Code)
	}
}
