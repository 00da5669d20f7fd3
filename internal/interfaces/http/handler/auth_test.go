package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/autodealer/backend/internal/application/identity"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/autodealer/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testCookieConfig returns a default cookie config for tests
func testCookieConfig() config.CookieConfig {
	return config.CookieConfig{
		Domain:   "",
		Path:     "/",
		Secure:   false,
		SameSite: "lax",
	}
}

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		RefreshSecret:          "test-refresh-secret-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

type authFixture struct {
	accounts  *MockAccountRepository
	profiles  *MockProfileRepository
	roles     *MockRoleRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	router    *gin.Engine
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		accounts:  new(MockAccountRepository),
		profiles:  new(MockProfileRepository),
		roles:     new(MockRoleRepository),
		jwt:       auth.NewJWTService(testJWTConfig()),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}
	svc := appidentity.NewAuthService(f.accounts, f.profiles, f.roles, f.jwt, f.blacklist, zap.NewNop())
	h := NewAuthHandler(svc, testCookieConfig(), testJWTConfig())

	r := gin.New()
	public := r.Group("/api/v1/auth")
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.RefreshToken)

	protected := r.Group("/api/v1/auth")
	protected.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{JWTService: f.jwt, TokenBlacklist: f.blacklist}))
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)

	f.router = r
	return f
}

func newTestAccount(t *testing.T) (*identity.Account, *identity.Profile) {
	t.Helper()
	account, err := identity.NewAccount("ann@example.com", "Password123")
	require.NoError(t, err)
	profile, err := identity.NewProfile(account.ID, "Ann Manager", "+7 900 000-00-00")
	require.NoError(t, err)
	return account, profile
}

func (f *authFixture) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *authFixture) login(t *testing.T, account *identity.Account, profile *identity.Profile, roles []identity.Role) *httptest.ResponseRecorder {
	t.Helper()
	f.accounts.On("FindByEmail", mock.Anything, account.Email).Return(account, nil)
	f.accounts.On("Save", mock.Anything, account).Return(nil)
	f.roles.On("RolesOf", mock.Anything, account.ID).Return(roles, nil)
	f.profiles.On("FindByUserID", mock.Anything, account.ID).Return(profile, nil)

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{Email: account.Email, Password: "Password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w
}

func TestAuthHandler_Login_Success(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)

	w := f.login(t, account, profile, []identity.Role{identity.RoleManager})

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.Nil(t, data["refresh_token"], "refresh token must only travel in the cookie")
	assert.Equal(t, "Bearer", data["token_type"])

	user := data["user"].(map[string]any)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.Equal(t, []any{"manager"}, user["roles"])

	cookie := findCookie(w, RefreshTokenCookie)
	require.NotNil(t, cookie, "refresh_token cookie should be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	account, _ := newTestAccount(t)
	f.accounts.On("FindByEmail", mock.Anything, account.Email).Return(account, nil)

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{Email: account.Email, Password: "wrong-password"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)
	assert.Nil(t, findCookie(w, RefreshTokenCookie))
}

func TestAuthHandler_Login_UnknownEmailLooksTheSame(t *testing.T) {
	f := newAuthFixture()
	f.accounts.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, shared.ErrNotFound)

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", appidentity.LoginRequest{Email: "ghost@example.com", Password: "Password123"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	f := newAuthFixture()

	w := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	f.accounts.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestAuthHandler_Register(t *testing.T) {
	f := newAuthFixture()
	f.accounts.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	f.accounts.On("Create", mock.Anything, mock.AnythingOfType("*identity.Account"), mock.AnythingOfType("*identity.Profile")).Return(nil)

	w := f.do(t, http.MethodPost, "/api/v1/auth/register", appidentity.RegisterRequest{
		Email:    "new@example.com",
		Password: "Password123",
		FullName: "New Client",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	user := data["user"].(map[string]any)
	assert.Empty(t, user["roles"], "self-registered accounts are clients")
	assert.NotNil(t, findCookie(w, RefreshTokenCookie))
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	f := newAuthFixture()
	f.accounts.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	w := f.do(t, http.MethodPost, "/api/v1/auth/register", appidentity.RegisterRequest{
		Email:    "taken@example.com",
		Password: "Password123",
		FullName: "Someone",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_RefreshToken_FromCookie(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)
	loginW := f.login(t, account, profile, nil)
	f.accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	cookie := findCookie(loginW, RefreshTokenCookie)
	require.NotNil(t, cookie)

	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", nil, func(r *http.Request) { r.AddCookie(cookie) })

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	rotated := findCookie(w, RefreshTokenCookie)
	require.NotNil(t, rotated)
	assert.NotEmpty(t, rotated.Value)
}

func TestAuthHandler_RefreshToken_FromBody(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)
	loginW := f.login(t, account, profile, nil)
	f.accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	token := findCookie(loginW, RefreshTokenCookie).Value
	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", appidentity.RefreshTokenRequest{RefreshToken: token})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthHandler_RefreshToken_Missing(t *testing.T) {
	f := newAuthFixture()

	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshToken_AccessTokenRejected(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)
	loginW := f.login(t, account, profile, nil)
	access := decodeResponse(t, loginW).Data.(map[string]any)["access_token"].(string)

	w := f.do(t, http.MethodPost, "/api/v1/auth/refresh", appidentity.RefreshTokenRequest{RefreshToken: access})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	cleared := findCookie(w, RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthHandler_Logout_RevokesAccessToken(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)
	loginW := f.login(t, account, profile, nil)
	access := decodeResponse(t, loginW).Data.(map[string]any)["access_token"].(string)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+access) }

	w := f.do(t, http.MethodPost, "/api/v1/auth/logout", nil, bearer)
	assert.Equal(t, http.StatusOK, w.Code)
	cleared := findCookie(w, RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	f := newAuthFixture()

	w := f.do(t, http.MethodPost, "/api/v1/auth/logout", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me_ReadsRolesFromStore(t *testing.T) {
	f := newAuthFixture()
	account, profile := newTestAccount(t)
	f.accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	f.roles.On("RolesOf", mock.Anything, account.ID).Return([]identity.Role{identity.RoleAdmin}, nil)
	f.profiles.On("FindByUserID", mock.Anything, account.ID).Return(profile, nil)

	// The token says client; storage says admin
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: account.ID, Email: account.Email})
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/v1/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Ann Manager", data["full_name"])
	assert.Equal(t, []any{"admin"}, data["roles"])
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteNoneMode, parseSameSite("none"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
}
