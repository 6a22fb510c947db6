package credstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	backend, err := OpenSQLite(path)
	require.NoError(t, err)
	store := New(backend)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SetAccessToken(ctx, "access"))
	require.NoError(t, store.SetUser(ctx, UserRecord{UserID: "u1", Email: "a@example.com", Username: "a"}))

	access, err := store.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access", access)

	user, err := store.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", user.UserID)

	// Upsert replaces in place.
	require.NoError(t, store.SetAccessToken(ctx, "access-2"))
	access, err = store.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", access)
}

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	backend, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, New(backend).SetRefreshToken(ctx, "refresh"))
	require.NoError(t, backend.Close())

	// Reopening applies migrations idempotently and sees the old value.
	backend, err = OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	refresh, err := New(backend).RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "refresh", refresh)
}
