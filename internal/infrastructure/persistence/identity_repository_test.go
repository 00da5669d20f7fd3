package persistence

import (
	"context"
	"testing"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, email, name string) (*identity.Account, *identity.Profile) {
	t.Helper()
	account, err := identity.NewConfirmedAccount(email, "s3cret-pass")
	require.NoError(t, err)
	profile, err := identity.NewProfile(account.ID, name, "+7 900 000-00-00")
	require.NoError(t, err)
	return account, profile
}

func TestGormAccountRepository(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewGormAccountRepository(db)
	profiles := NewGormProfileRepository(db)
	roles := NewGormRoleRepository(db)
	ctx := context.Background()

	account, profile := newTestAccount(t, "manager@dealer.test", "Oleg Manager")
	require.NoError(t, accounts.Create(ctx, account, profile))

	t.Run("lookup by email ignores case", func(t *testing.T) {
		found, err := accounts.FindByEmail(ctx, "  Manager@Dealer.TEST ")
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
		assert.True(t, found.EmailConfirmed)
		assert.True(t, found.VerifyPassword("s3cret-pass"))

		exists, err := accounts.ExistsByEmail(ctx, "manager@dealer.test")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup, dupProfile := newTestAccount(t, "manager@dealer.test", "Someone Else")
		assert.ErrorIs(t, accounts.Create(ctx, dup, dupProfile), identity.ErrEmailTaken)

		_, err := profiles.FindByUserID(ctx, dup.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound, "profile insert must roll back with the account")
	})

	t.Run("profiles by ids", func(t *testing.T) {
		found, err := profiles.FindByUserIDs(ctx, []uuid.UUID{account.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Oleg Manager", found[account.ID].FullName)
	})

	t.Run("record login", func(t *testing.T) {
		account.RecordLogin()
		require.NoError(t, accounts.Save(ctx, account))
		found, err := accounts.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.NotNil(t, found.LastLoginAt)
	})

	t.Run("delete removes profile and roles", func(t *testing.T) {
		require.NoError(t, roles.Assign(ctx, account.ID, identity.RoleManager))
		require.NoError(t, accounts.Delete(ctx, account.ID))

		_, err := accounts.FindByID(ctx, account.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = profiles.FindByUserID(ctx, account.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		held, err := roles.RolesOf(ctx, account.ID)
		require.NoError(t, err)
		assert.Empty(t, held)

		assert.ErrorIs(t, accounts.Delete(ctx, account.ID), shared.ErrNotFound)
	})
}

func TestGormRoleRepository(t *testing.T) {
	db := setupTestDB(t)
	roles := NewGormRoleRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, roles.Assign(ctx, userID, identity.RoleManager))
	require.NoError(t, roles.Assign(ctx, userID, identity.RoleAdmin))
	assert.ErrorIs(t, roles.Assign(ctx, userID, identity.RoleManager), shared.ErrAlreadyExists)

	held, err := roles.RolesOf(ctx, userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []identity.Role{identity.RoleManager, identity.RoleAdmin}, held)

	managers, err := roles.UsersWithRole(ctx, identity.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, managers)

	require.NoError(t, roles.Revoke(ctx, userID, identity.RoleAdmin))
	assert.ErrorIs(t, roles.Revoke(ctx, userID, identity.RoleAdmin), shared.ErrNotFound)
}
