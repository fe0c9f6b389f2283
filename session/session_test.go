package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/session/storagefakes"
	"github.com/yenikoza/tablet-dashboard/token/tokentest"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*session.Store, *storagefakes.FakeStorage) {
	t.Helper()
	fs := storagefakes.NewFakeStorage()
	store, err := session.NewStore(fs, session.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return store, fs
}

func testSession() *session.Session {
	return &session.Session{
		Token:     tokentest.ExpiringAt(fixedNow.Add(time.Hour)),
		User:      session.User{ID: "1", Username: "admin", Name: "Admin User", Role: "admin"},
		ExpiresAt: fixedNow.Add(time.Hour),
	}
}

func TestNewStoreRequiresStorage(t *testing.T) {
	_, err := session.NewStore(nil)
	require.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)

	require.NoError(t, store.Save(ctx, testSession()))
	require.Equal(t, 3, fs.Len())

	sess, ok := store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "admin", sess.User.Username)
	require.Equal(t, "Admin User", sess.User.DisplayName())
	require.True(t, sess.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	require.True(t, store.IsValid(sess.Token))
	require.True(t, store.HasValidToken(ctx))
}

func TestSaveReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)

	require.NoError(t, store.Save(ctx, testSession()))

	next := &session.Session{Token: "second", User: session.User{ID: "2", Username: "ops"}}
	require.NoError(t, store.Save(ctx, next))

	// no expiry on the second session, so the old expiry must not linger
	require.Equal(t, 2, fs.Len())
	_, ok := store.LoadExpiry(ctx)
	require.False(t, ok)

	sess, ok := store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "second", sess.Token)
	require.Equal(t, "ops", sess.User.Username)
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	store, _ := newStore(t)
	require.Error(t, store.Save(context.Background(), &session.Session{}))
	require.Error(t, store.Save(context.Background(), nil))
}

func TestLoadPartialSessionIsClearedAndAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("token without user", func(t *testing.T) {
		store, fs := newStore(t)
		require.NoError(t, fs.Set(ctx, session.TokenKey, "abc"))

		_, ok := store.Load(ctx)
		require.False(t, ok)
		require.Zero(t, fs.Len())
	})

	t.Run("user without token", func(t *testing.T) {
		store, fs := newStore(t)
		require.NoError(t, fs.Set(ctx, session.UserKey, `{"id":1,"username":"admin"}`))

		_, ok := store.Load(ctx)
		require.False(t, ok)
		require.Zero(t, fs.Len())
	})

	t.Run("corrupt user", func(t *testing.T) {
		store, fs := newStore(t)
		require.NoError(t, fs.Set(ctx, session.TokenKey, "abc"))
		require.NoError(t, fs.Set(ctx, session.UserKey, `{not json`))

		_, ok := store.LoadUser(ctx)
		require.False(t, ok)
		_, ok = store.Load(ctx)
		require.False(t, ok)
		require.Zero(t, fs.Len())
	})
}

func TestLoadUserAcceptsNumericID(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	require.NoError(t, fs.Set(ctx, session.UserKey, `{"id":42,"username":"admin"}`))

	u, ok := store.LoadUser(ctx)
	require.True(t, ok)
	require.Equal(t, "42", u.ID.String())
}

func TestStorageReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	require.NoError(t, store.Save(ctx, testSession()))

	fs.FailGet(errors.New("disk gone"))
	_, ok := store.LoadToken(ctx)
	require.False(t, ok)
	_, ok = store.LoadUser(ctx)
	require.False(t, ok)
	require.False(t, store.HasValidToken(ctx))
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	require.NoError(t, store.Save(ctx, testSession()))

	require.NoError(t, store.Clear(ctx))
	once := fs.Snapshot()

	require.NoError(t, store.Clear(ctx))
	require.Equal(t, once, fs.Snapshot())
	require.Empty(t, fs.Snapshot())

	_, ok := store.Load(ctx)
	require.False(t, ok)
}

func TestClearReportsStorageFailure(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	fs.FailRemove(errors.New("locked"))
	require.Error(t, store.Clear(ctx))
}

func TestIsValidUsesStoreClock(t *testing.T) {
	store, _ := newStore(t)
	require.False(t, store.IsValid(tokentest.ExpiringAt(fixedNow)))
	require.True(t, store.IsValid(tokentest.ExpiringAt(fixedNow.Add(time.Second))))
	require.False(t, store.IsValid("garbage"))
}

func TestFailedSaveNeverMixesSessions(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	require.NoError(t, store.Save(ctx, testSession()))

	fs.FailSetKey(session.UserKey, errors.New("disk full"))
	next := &session.Session{
		Token:     tokentest.ExpiringAt(fixedNow.Add(2 * time.Hour)),
		User:      session.User{ID: "2", Username: "ops"},
		ExpiresAt: fixedNow.Add(2 * time.Hour),
	}
	require.Error(t, store.Save(ctx, next))

	_, ok := store.Load(ctx)
	require.False(t, ok)
	_, ok = store.LoadToken(ctx)
	require.False(t, ok)
	require.Zero(t, fs.Len())

	fs.FailSetKey(session.UserKey, nil)
	require.NoError(t, store.Save(ctx, next))
	sess, ok := store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, "ops", sess.User.Username)
}
