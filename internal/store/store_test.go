package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("chat_memory_demo_tenant", []byte(`[{"sender":"bot"}]`)))

	got, err := s.Get("chat_memory_demo_tenant")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"sender":"bot"}]`), got)

	require.NoError(t, s.Delete("chat_memory_demo_tenant"))
	_, err = s.Get("chat_memory_demo_tenant")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.Delete("chat_memory_demo_tenant"))
}

func TestFileStoreKeyCannotEscapeStateDir(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("../outside", []byte("x")))

	got, err := s.Get("../outside")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	_, err := s.Get("user")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("user", []byte(`{"email":"a@b.c"}`)))
	got, err := s.Get("user")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"email":"a@b.c"}`), got)

	// Mutating the returned slice must not affect the stored value.
	got[0] = 'X'
	again, err := s.Get("user")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again[0])

	require.NoError(t, s.Delete("user"))
	_, err = s.Get("user")
	assert.ErrorIs(t, err, ErrNotFound)
}
