package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jewelry/backend/internal/domain/identity"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, repo *GormUserRepository, email, name string) *identity.User {
	t.Helper()
	user, err := identity.NewCustomer(email, "secret123", name)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))

	user := createTestUser(t, repo, "Jane@Example.com", "Jane Doe")

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", found.Email)
	assert.Equal(t, "Jane Doe", found.FullName)
	assert.Equal(t, identity.RoleCustomer, found.Role)
	assert.True(t, found.VerifyPassword("secret123"))

	byEmail, err := repo.FindByEmail(ctx, " JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewGormUserRepository(newTestDB(t))
	createTestUser(t, repo, "dup@example.com", "First")

	second, err := identity.NewCustomer("dup@example.com", "secret123", "Second")
	require.NoError(t, err)

	err = repo.Create(context.Background(), second)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	exists, err := repo.ExistsByEmail(context.Background(), "DUP@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))
	user := createTestUser(t, repo, "update@example.com", "Before")

	require.NoError(t, user.UpdateProfile(identity.Profile{FullName: "After", City: "Porto"}))
	require.NoError(t, user.ChangeRole(identity.RoleAdmin))
	user.RecordLoginSuccess("10.0.0.1")
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.FullName)
	assert.Equal(t, "Porto", found.City)
	assert.Equal(t, identity.RoleAdmin, found.Role)
	assert.Equal(t, "10.0.0.1", found.LastLoginIP)
	require.NotNil(t, found.LastLoginAt)

	ghost, err := identity.NewCustomer("ghost@example.com", "secret123", "Ghost")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
}

func TestGormUserRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))

	createTestUser(t, repo, "alice@example.com", "Alice Smith")
	createTestUser(t, repo, "bob@example.com", "Bob Jones")
	admin := createTestUser(t, repo, "carol@shop.com", "Carol Admin")
	require.NoError(t, admin.ChangeRole(identity.RoleAdmin))
	require.NoError(t, repo.Update(ctx, admin))

	users, total, err := repo.FindAll(ctx, identity.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)

	users, total, err = repo.FindAll(ctx, identity.UserFilter{Keyword: "SMITH"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "alice@example.com", users[0].Email)

	adminRole := identity.RoleAdmin
	users, total, err = repo.FindAll(ctx, identity.UserFilter{Role: &adminRole})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, admin.ID, users[0].ID)

	users, total, err = repo.FindAll(ctx, identity.UserFilter{SortBy: "email", SortOrder: "asc", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 1)
	assert.Equal(t, "carol@shop.com", users[0].Email)

	count, err := repo.CountByRole(ctx, identity.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))
	user := createTestUser(t, repo, "bye@example.com", "Bye")

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), shared.ErrNotFound)
}
