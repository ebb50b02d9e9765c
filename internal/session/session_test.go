package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ai/nexus/internal/store"
)

func TestSaveLoadClear(t *testing.T) {
	st := store.NewMemStore()

	s := &Session{
		User:      &User{ID: 7, Email: "owner@acme.test", IsVerified: true, BusinessID: 3},
		AuthToken: "jwt-abc",
	}
	require.NoError(t, Save(st, s))

	loaded, err := Load(st)
	require.NoError(t, err)
	require.True(t, loaded.SignedIn())
	assert.Equal(t, "owner@acme.test", loaded.User.Email)
	assert.Equal(t, 3, loaded.User.BusinessID)
	assert.Equal(t, "jwt-abc", loaded.AuthToken)

	require.NoError(t, Clear(st))
	loaded, err = Load(st)
	require.NoError(t, err)
	assert.False(t, loaded.SignedIn())
	assert.Empty(t, loaded.AuthToken)
}

func TestLoadEmptyStore(t *testing.T) {
	loaded, err := Load(store.NewMemStore())
	require.NoError(t, err)
	assert.False(t, loaded.SignedIn())
}

func TestSaveRejectsPartialSession(t *testing.T) {
	st := store.NewMemStore()

	assert.Error(t, Save(st, &Session{User: &User{Email: "x@y.z"}}))
	assert.Error(t, Save(st, &Session{AuthToken: "jwt"}))
	assert.Error(t, Save(st, nil))
}

func TestLoadTreatsHalfPersistedAsSignedOut(t *testing.T) {
	st := store.NewMemStore()
	// Token without a user record: invariant says both or neither.
	require.NoError(t, st.Set("token", []byte("orphan")))

	loaded, err := Load(st)
	require.NoError(t, err)
	assert.False(t, loaded.SignedIn())
}
