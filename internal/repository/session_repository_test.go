package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

type sessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

func exerciseSessionStore(t *testing.T, store sessionStore, now time.Time) {
	t.Helper()
	ctx := context.Background()
	user := models.User{ID: "2", Name: "Rahul Sharma", Email: "student@iiti.ac.in", Role: models.RoleStudent, Semester: 6}

	live := models.Session{ID: "live", User: user, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, live))

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, user, got.User)

	expired := models.Session{ID: "old", User: user, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, store.Save(ctx, expired))
	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Get(ctx, "live")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestMemorySessionRepository(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := NewMemorySessionRepository()
	repo.now = func() time.Time { return now }

	exerciseSessionStore(t, repo, now)
}

func TestBoltSessionRepository(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "sessions", "sessions.db")

	repo, err := OpenBoltSessionRepository(path)
	require.NoError(t, err)
	repo.now = func() time.Time { return now }
	exerciseSessionStore(t, repo, now)

	session := models.Session{ID: "persist", User: models.User{ID: "1", Role: models.RoleAdmin}, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Save(context.Background(), session))
	require.NoError(t, repo.Close())

	reopened, err := OpenBoltSessionRepository(path)
	require.NoError(t, err)
	defer reopened.Close()
	reopened.now = func() time.Time { return now }

	got, err := reopened.Get(context.Background(), "persist")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.User.Role)
}

func TestRedisSessionRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisSessionRepository(NewCacheRepository(nil, nil))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, models.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}))
	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, repo.Delete(ctx, "s1"))
}
