package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-client/internal/session"
	"garage-client/pkg/response"
)

func newPersistence(t *testing.T) (*session.RedisPersistence, string) {
	t.Helper()

	mr := miniredis.RunT(t)
	persist, err := session.NewRedisPersistence(mr.Addr(), "garage:session")
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })

	return persist, mr.Addr()
}

func TestStore_HydrateWithNothingPersisted(t *testing.T) {
	persist, _ := newPersistence(t)
	store := session.NewStore(persist)

	require.NoError(t, store.Hydrate(context.Background()))

	assert.Nil(t, store.Current())
	_, err := store.Token()
	assert.ErrorIs(t, err, response.ErrUnauthenticated)
}

func TestStore_SetPersistsAcrossRestarts(t *testing.T) {
	persist, addr := newPersistence(t)
	store := session.NewStore(persist)

	sess := &session.Session{
		UserID:      3,
		Username:    "kasia",
		Email:       "kasia@example.com",
		Roles:       []string{"ROLE_MECHANIC"},
		AccessToken: "opaque-token",
	}
	require.NoError(t, store.Set(context.Background(), sess))

	// A fresh process: new persistence against the same redis, new store.
	restarted, err := session.NewRedisPersistence(addr, "garage:session")
	require.NoError(t, err)
	defer restarted.Close()

	fresh := session.NewStore(restarted)
	require.NoError(t, fresh.Hydrate(context.Background()))

	require.NotNil(t, fresh.Current())
	assert.Equal(t, sess, fresh.Current())

	token, err := fresh.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestStore_ClearForgetsSession(t *testing.T) {
	persist, _ := newPersistence(t)
	store := session.NewStore(persist)

	require.NoError(t, store.Set(context.Background(), &session.Session{AccessToken: "opaque-token"}))
	require.NoError(t, store.Clear(context.Background()))

	assert.Nil(t, store.Current())

	fresh := session.NewStore(persist)
	require.NoError(t, fresh.Hydrate(context.Background()))
	assert.Nil(t, fresh.Current())
}
