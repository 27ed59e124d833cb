package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTaskRepositoryCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	require.NoError(t, repo.Init(ctx))
	require.NoError(t, repo.Init(ctx))

	created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	first, err := repo.Add(ctx, &domain.Task{
		Title:        "first",
		Description:  "desc",
		CreationDate: created,
		DueDate:      due,
		UserName:     "alice",
	})
	require.NoError(t, err)
	second, err := repo.Add(ctx, &domain.Task{Title: "second", CreationDate: created, DueDate: due, UserName: "bob"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	got, ok, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.True(t, created.Equal(got.CreationDate))
	assert.True(t, due.Equal(got.DueDate))
	assert.False(t, got.IsCompleted)
	assert.Equal(t, "alice", got.UserName)

	got.Title = "first, edited"
	got.IsCompleted = true
	require.NoError(t, repo.Update(ctx, got.ID, got))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "first, edited", all[0].Title)
	assert.True(t, all[0].IsCompleted)
	assert.Equal(t, second.ID, all[1].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, ok, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, repo.Delete(ctx, first.ID), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, first.ID, got), repository.ErrNotFound)

	// ids are never reused after a delete
	third, err := repo.Add(ctx, &domain.Task{Title: "third", CreationDate: created, DueDate: due, UserName: "alice"})
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestTaskRepositoryEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	require.NoError(t, repo.Init(ctx))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTaskRepositoryCanceledContext(t *testing.T) {
	t.Parallel()
	repo := NewTaskRepository(openTestDB(t))
	require.NoError(t, repo.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func newUserRepos(t *testing.T) (repository.UserRepository, repository.RefreshTokenRepository) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepository(db)
	tokens := NewRefreshTokenRepository(db)
	require.NoError(t, InitAll(context.Background(), users, tokens))
	return users, tokens
}

func TestUserRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users, _ := newUserRepos(t)

	user := &domain.User{UserName: "alice", Email: "Alice@Example.com", PasswordHash: "hash", IsActive: true}
	id, err := users.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	byName, err := users.GetByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.True(t, byName.IsActive)

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	byID, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.UserName)

	_, err = users.GetByUserName(ctx, "ALICE")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = users.Create(ctx, &domain.User{UserName: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = users.Create(ctx, &domain.User{UserName: "alice2", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, users.Delete(ctx, id))
	_, err = users.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, id), repository.ErrNotFound)
}

func TestUserRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users, _ := newUserRepos(t)

	id, err := users.Create(ctx, &domain.User{UserName: "bob", Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	roles, err := users.GetRoles(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, roles)

	assert.ErrorIs(t, users.AddToRole(ctx, id, domain.RoleClient), repository.ErrNotFound)

	require.NoError(t, users.EnsureRole(ctx, domain.RoleClient))
	require.NoError(t, users.EnsureRole(ctx, domain.RoleClient))
	require.NoError(t, users.AddToRole(ctx, id, domain.RoleClient))
	require.NoError(t, users.AddToRole(ctx, id, domain.RoleClient))

	roles, err = users.GetRoles(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleClient}, roles)
}

func TestRefreshTokenRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users, tokens := newUserRepos(t)

	userID, err := users.Create(ctx, &domain.User{UserName: "carol", Email: "carol@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	rt := &domain.RefreshToken{UserID: userID, Token: "abc123", Created: now, Expires: now.Add(time.Hour)}
	_, err = tokens.Create(ctx, rt)
	require.NoError(t, err)

	got, err := tokens.GetByToken(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, rt.ID, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.Nil(t, got.Revoked)
	assert.True(t, got.IsActive(now))

	require.NoError(t, tokens.Revoke(ctx, got.ID))
	assert.ErrorIs(t, tokens.Revoke(ctx, got.ID), repository.ErrNotFound)

	got, err = tokens.GetByToken(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got.Revoked)
	assert.False(t, got.IsActive(now))

	_, err = tokens.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, NewUserRepository(db).Init(ctx))

	insert := `INSERT INTO users (user_name, email, password_hash, created_at, updated_at) VALUES (?, ?, 'h', ?, ?)`
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, insert, "dave", "dave@example.com", now, now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "dave", "other@example.com", now, now)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO users (user_name) VALUES ('erin')`)
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err), "not null failures are not duplicates")

	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.user_name")))
	assert.False(t, isUniqueViolation(nil))
}
