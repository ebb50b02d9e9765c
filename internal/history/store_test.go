package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ai/nexus/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConversationArchive(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.StartConversation("demo_tenant", true)
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)

	require.NoError(t, s.AddMessage(conv.ID, "bot", "Hi!"))
	require.NoError(t, s.AddMessage(conv.ID, "user", "hello"))

	msgs, err := s.GetMessages(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "bot", msgs[0].Sender)
	assert.Equal(t, "hello", msgs[1].Content)

	convs, err := s.ListConversations(10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, conv.ID, convs[0].ID)
	assert.True(t, convs[0].Demo)
}

func TestTransactionCacheReplaces(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	first := []api.TokenTransaction{
		{ID: 1, Amount: -5, Type: "chat", Detail: "Chat message", CreatedAt: now},
	}
	require.NoError(t, s.CacheTransactions(first))

	second := []api.TokenTransaction{
		{ID: 2, Amount: 100, Type: "purchase", CreatedAt: now.Add(time.Minute)},
		{ID: 3, Amount: -5, Type: "chat", CreatedAt: now.Add(2 * time.Minute)},
	}
	require.NoError(t, s.CacheTransactions(second))

	got, err := s.CachedTransactions()
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first; the old cache is gone.
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestLeadsCache(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.CacheLeads([]api.Lead{
		{ID: 1, Name: "Ada", Email: "ada@acme.test", Message: "I want to buy", CreatedAt: now},
	}))

	got, err := s.CachedLeads()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "I want to buy", got[0].Message)
}
