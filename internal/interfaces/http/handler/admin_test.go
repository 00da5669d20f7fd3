package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/autodealer/backend/internal/application/identity"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type adminFixture struct {
	accounts *MockAccountRepository
	profiles *MockProfileRepository
	roles    *MockRoleRepository
	handler  *AdminHandler
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		accounts: new(MockAccountRepository),
		profiles: new(MockProfileRepository),
		roles:    new(MockRoleRepository),
	}
	provisioning := appidentity.NewManagerProvisioningService(f.accounts, f.roles, zap.NewNop())
	roleService := appidentity.NewRoleService(f.roles, f.accounts, f.profiles, auth.NewInMemoryTokenBlacklist(), time.Hour, zap.NewNop())
	f.handler = NewAdminHandler(provisioning, roleService)
	return f
}

func (f *adminFixture) router(a identity.Actor) *gin.Engine {
	r := gin.New()
	r.Use(withActor(a))
	r.POST("/admin/managers", f.handler.CreateManager)
	r.POST("/admin/users/:id/roles", f.handler.AssignRole)
	r.DELETE("/admin/users/:id/roles/:role", f.handler.RevokeRole)
	return r
}

func (f *adminFixture) createManager(t *testing.T, a identity.Actor) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/managers", jsonBody(t, appidentity.CreateManagerRequest{
		Email:    "marat@dealer.example",
		Password: "Password123",
		FullName: "Marat",
	}))
	req.Header.Set("Content-Type", "application/json")
	f.router(a).ServeHTTP(w, req)
	return w
}

func TestAdminHandler_CreateManager_Success(t *testing.T) {
	f := newAdminFixture()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	f.roles.On("RolesOf", mock.Anything, admin.UserID).Return([]identity.Role{identity.RoleAdmin}, nil)
	f.accounts.On("ExistsByEmail", mock.Anything, "marat@dealer.example").Return(false, nil)
	f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *identity.Account) bool {
		return a.EmailConfirmed
	}), mock.AnythingOfType("*identity.Profile")).Return(nil)
	f.roles.On("Assign", mock.Anything, mock.Anything, identity.RoleManager).Return(nil)

	w := f.createManager(t, admin)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "marat@dealer.example", data["email"])
	assert.NotEmpty(t, data["id"])
	f.accounts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAdminHandler_CreateManager_StaleAdminToken(t *testing.T) {
	f := newAdminFixture()
	// The token still says admin but the role was revoked in storage
	caller := identity.NewActor(uuid.New(), identity.RoleAdmin)
	f.roles.On("RolesOf", mock.Anything, caller.UserID).Return([]identity.Role{identity.RoleManager}, nil)

	w := f.createManager(t, caller)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Error.Code)
	f.accounts.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminHandler_CreateManager_Anonymous(t *testing.T) {
	f := newAdminFixture()

	w := f.createManager(t, identity.Anonymous())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.roles.AssertNotCalled(t, "RolesOf", mock.Anything, mock.Anything)
}

func TestAdminHandler_CreateManager_RollsBackWhenRoleFails(t *testing.T) {
	f := newAdminFixture()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	var createdID uuid.UUID
	f.roles.On("RolesOf", mock.Anything, admin.UserID).Return([]identity.Role{identity.RoleAdmin}, nil)
	f.accounts.On("ExistsByEmail", mock.Anything, "marat@dealer.example").Return(false, nil)
	f.accounts.On("Create", mock.Anything, mock.AnythingOfType("*identity.Account"), mock.AnythingOfType("*identity.Profile")).
		Run(func(args mock.Arguments) { createdID = args.Get(1).(*identity.Account).ID }).
		Return(nil)
	f.roles.On("Assign", mock.Anything, mock.Anything, identity.RoleManager).Return(errors.New("connection reset"))
	f.accounts.On("Delete", mock.Anything, mock.Anything).Return(nil)

	w := f.createManager(t, admin)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrCodeInternal, decodeResponse(t, w).Error.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	f.accounts.AssertCalled(t, "Delete", mock.Anything, createdID)
}

func TestAdminHandler_CreateManager_EmailTaken(t *testing.T) {
	f := newAdminFixture()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	f.roles.On("RolesOf", mock.Anything, admin.UserID).Return([]identity.Role{identity.RoleAdmin}, nil)
	f.accounts.On("ExistsByEmail", mock.Anything, "marat@dealer.example").Return(true, nil)

	w := f.createManager(t, admin)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
}

func TestAdminHandler_AssignRole_RejectsUnknownRole(t *testing.T) {
	f := newAdminFixture()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/users/"+uuid.NewString()+"/roles", jsonBody(t, map[string]string{"role": "owner"}))
	req.Header.Set("Content-Type", "application/json")
	f.router(admin).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.roles.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminHandler_RevokeRole_InvalidUserID(t *testing.T) {
	f := newAdminFixture()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	w := httptest.NewRecorder()
	f.router(admin).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/users/nope/roles/manager", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
