package sqlitestorage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/session/sqlitestorage"
)

func TestStorageCRUD(t *testing.T) {
	ctx := context.Background()
	s, err := sqlitestorage.NewInMemory()
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "authToken")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "authToken", "one"))
	require.NoError(t, s.Set(ctx, "authToken", "two"))

	v, ok, err := s.Get(ctx, "authToken")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", v)

	require.NoError(t, s.Remove(ctx, "authToken"))
	require.NoError(t, s.Remove(ctx, "authToken"))
	_, ok, err = s.Get(ctx, "authToken")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSessionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := sqlitestorage.New(path)
	require.NoError(t, err)
	store, err := session.NewStore(s)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, &session.Session{
		Token: "tok",
		User:  session.User{ID: "1", Username: "admin"},
	}))
	require.NoError(t, s.Close())

	s, err = sqlitestorage.New(path)
	require.NoError(t, err)
	defer s.Close()
	store, err = session.NewStore(s)
	require.NoError(t, err)

	sess, ok := store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "tok", sess.Token)
	require.Equal(t, "admin", sess.User.Username)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, ok = store.Load(ctx)
	require.False(t, ok)
}
