package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/store"
)

// fakeBackend scripts the backend responses for manager tests.
type fakeBackend struct {
	balance     int
	deductErr   error
	chatResp    api.ChatResponse
	chatErr     error
	chatCalls   int
	deductCalls int
	lastReq     api.ChatRequest
	chatHook    func() // runs inside Chat, before returning
}

func (f *fakeBackend) TokenBalance(ctx context.Context) (int, error) {
	return f.balance, nil
}

func (f *fakeBackend) DeductTokens(ctx context.Context, amount int) (int, error) {
	f.deductCalls++
	if f.deductErr != nil {
		return 0, f.deductErr
	}
	f.balance -= amount
	return f.balance, nil
}

func (f *fakeBackend) Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error) {
	f.chatCalls++
	f.lastReq = req
	if f.chatHook != nil {
		f.chatHook()
	}
	return f.chatResp, f.chatErr
}

func newTestManager(t *testing.T, backend *fakeBackend, demo bool) (*Manager, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	m := NewManager(backend, st, Options{
		MemoryKey:  "chat_memory_demo_tenant",
		DemoMode:   demo,
		BusinessID: 3,
	})
	m.Init()
	return m, st
}

func TestInitSeedsGreeting(t *testing.T) {
	m, st := newTestManager(t, &fakeBackend{}, true)

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SenderBot, msgs[0].Sender)
	assert.Equal(t, GreetingText, msgs[0].Text)

	// Seed is persisted immediately.
	data, err := st.Get("chat_memory_demo_tenant")
	require.NoError(t, err)
	var stored []Message
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, msgs, stored)
}

func TestInitLoadsPersistedTranscript(t *testing.T) {
	st := store.NewMemStore()
	prior := []Message{
		{Sender: SenderBot, Text: "Hi!"},
		{Sender: SenderUser, Text: "hello"},
	}
	data, _ := json.Marshal(prior)
	require.NoError(t, st.Set("chat_memory_demo_tenant", data))

	m := NewManager(&fakeBackend{}, st, Options{MemoryKey: "chat_memory_demo_tenant", DemoMode: true})
	m.Init()

	assert.Equal(t, prior, m.Messages())
}

func TestSendEmptyOrWhitespaceIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestManager(t, backend, true)

	require.NoError(t, m.Send(context.Background(), ""))
	require.NoError(t, m.Send(context.Background(), "   \t\n"))

	assert.Len(t, m.Messages(), 1)
	assert.Zero(t, backend.chatCalls)
	assert.Zero(t, backend.deductCalls)
}

func TestSendWhileInFlightIsNoOp(t *testing.T) {
	backend := &fakeBackend{
		balance:  20,
		chatResp: api.ChatResponse{Response: "ok"},
	}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	// The second Send fires while the first is still waiting on the
	// backend; the in-flight guard must drop it entirely.
	backend.chatHook = func() {
		assert.True(t, m.Sending())
		require.NoError(t, m.Send(context.Background(), "second"))
	}

	require.NoError(t, m.Send(context.Background(), "first"))

	msgs := m.Messages()
	require.Len(t, msgs, 3) // greeting, "first", bot reply
	assert.Equal(t, "first", msgs[1].Text)
	assert.Equal(t, 1, backend.chatCalls)
	assert.Equal(t, 1, backend.deductCalls)
	assert.Equal(t, 15, m.Tokens())
	assert.False(t, m.Sending())
}

func TestSendHappyPathDeductsAndAppends(t *testing.T) {
	backend := &fakeBackend{
		balance:  10,
		chatResp: api.ChatResponse{Response: "Great choice!"},
	}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	require.NoError(t, m.Send(context.Background(), "I want to buy"))

	msgs := m.Messages()
	require.Len(t, msgs, 3) // greeting, user, bot reply
	assert.Equal(t, SenderUser, msgs[1].Sender)
	assert.Equal(t, "I want to buy", msgs[1].Text)
	assert.Equal(t, SenderBot, msgs[2].Sender)
	assert.Equal(t, "Great choice!", msgs[2].Text)
	assert.Equal(t, 5, m.Tokens())
	assert.False(t, m.Sending())
}

func TestSendInsufficientBalanceNeverHitsNetwork(t *testing.T) {
	backend := &fakeBackend{balance: 3}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	require.NoError(t, m.Send(context.Background(), "hello"))

	assert.Len(t, m.Messages(), 1)
	assert.Zero(t, backend.chatCalls)
	assert.Zero(t, backend.deductCalls)
	assert.True(t, m.ShowBuy())
}

func TestSendDeductionFailureAbortsAfterOptimisticAppend(t *testing.T) {
	backend := &fakeBackend{
		balance:   50,
		deductErr: errors.New("boom"),
	}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	err := m.Send(context.Background(), "hello")
	require.Error(t, err)

	msgs := m.Messages()
	require.Len(t, msgs, 2) // greeting + optimistic user message, no bot reply
	assert.Equal(t, SenderUser, msgs[1].Sender)
	assert.Zero(t, backend.chatCalls)
	assert.False(t, m.Sending())
}

func TestDemoModeSendsFullHistoryAndSkipsDeduction(t *testing.T) {
	backend := &fakeBackend{chatResp: api.ChatResponse{Response: "ok"}}
	m, _ := newTestManager(t, backend, true)

	require.NoError(t, m.Send(context.Background(), "hello"))

	assert.Zero(t, backend.deductCalls)
	assert.True(t, backend.lastReq.DemoMode)
	require.Len(t, backend.lastReq.History, 2) // greeting + new user message
	assert.Equal(t, "hello", backend.lastReq.History[1].Text)
	assert.Equal(t, "Free", m.TokenLabel())
}

func TestNonDemoSendsNoHistory(t *testing.T) {
	backend := &fakeBackend{balance: 100, chatResp: api.ChatResponse{Response: "ok"}}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	require.NoError(t, m.Send(context.Background(), "hello"))

	assert.Empty(t, backend.lastReq.History)
	assert.Equal(t, 3, backend.lastReq.BusinessID)
}

func TestHTTP402UsesDetailAndShowsBuyPrompt(t *testing.T) {
	backend := &fakeBackend{
		balance: 100,
		chatErr: &api.Error{Status: http.StatusPaymentRequired, Detail: "Insufficient tokens"},
	}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())

	require.NoError(t, m.Send(context.Background(), "hello"))

	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Insufficient tokens", msgs[2].Text)
	assert.True(t, m.ShowBuy())
}

func TestHTTPErrorWithoutDetailFallsBack(t *testing.T) {
	backend := &fakeBackend{
		chatErr: &api.Error{Status: http.StatusInternalServerError},
	}
	m, _ := newTestManager(t, backend, true)

	require.NoError(t, m.Send(context.Background(), "hello"))

	msgs := m.Messages()
	assert.Equal(t, "Sorry, something went wrong.", msgs[len(msgs)-1].Text)
	assert.False(t, m.ShowBuy())
}

func TestTransportFailureAppendsGenericMessage(t *testing.T) {
	backend := &fakeBackend{chatErr: errors.New("connection refused")}
	m, _ := newTestManager(t, backend, true)

	require.NoError(t, m.Send(context.Background(), "hello"))

	msgs := m.Messages()
	assert.Equal(t, GenericFailText, msgs[len(msgs)-1].Text)
	assert.False(t, m.Sending())
}

func TestSocialProofFlag(t *testing.T) {
	backend := &fakeBackend{chatResp: api.ChatResponse{Response: "A Lot Of People Love this product"}}
	m, _ := newTestManager(t, backend, true)

	require.NoError(t, m.Send(context.Background(), "is it popular?"))

	msgs := m.Messages()
	assert.True(t, msgs[len(msgs)-1].SocialProof)

	backend.chatResp = api.ChatResponse{Response: "it is fine"}
	require.NoError(t, m.Send(context.Background(), "and this one?"))
	msgs = m.Messages()
	assert.False(t, msgs[len(msgs)-1].SocialProof)
}

func TestVisualClassification(t *testing.T) {
	assert.True(t, IsVideo("https://cdn.example/demo.mp4"))
	assert.False(t, IsVideo("https://cdn.example/demo.png"))
	assert.False(t, IsVideo(""))
}

func TestClearResetsTranscriptAndStorage(t *testing.T) {
	backend := &fakeBackend{chatResp: api.ChatResponse{Response: "ok"}}
	m, st := newTestManager(t, backend, true)
	require.NoError(t, m.Send(context.Background(), "hello"))

	m.Clear()

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, ClearedText, msgs[0].Text)

	data, err := st.Get("chat_memory_demo_tenant")
	require.NoError(t, err)
	var stored []Message
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, ClearedText, stored[0].Text)
}

func TestPersistOverflowDiscardsHistory(t *testing.T) {
	st := store.NewMemStore()
	m := NewManager(&fakeBackend{chatResp: api.ChatResponse{Response: "ok"}}, st, Options{
		MemoryKey: "chat_memory_demo_tenant",
		DemoMode:  true,
	})
	m.Init()

	// One message large enough to push the serialized transcript past the cap.
	big := strings.Repeat("x", MaxMemoryBytes)
	require.NoError(t, m.Send(context.Background(), big))

	// The oversized transcript was discarded before the bot reply arrived.
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ClearedText, msgs[0].Text)
	assert.Equal(t, "ok", msgs[1].Text)
	assert.Equal(t, "Chat memory is full. The chat history will be cleared.", m.Notice())
	// Notice is one-shot.
	assert.Empty(t, m.Notice())
}

func TestInactivityPredicate(t *testing.T) {
	clock := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	st := store.NewMemStore()
	backend := &fakeBackend{chatResp: api.ChatResponse{Response: "ok"}}
	m := NewManager(backend, st, Options{MemoryKey: "k", DemoMode: true, Now: now})
	m.Init()

	assert.False(t, m.Inactive(clock.Add(39*time.Second)))
	assert.True(t, m.Inactive(clock.Add(40*time.Second)))

	// Any transcript change re-arms the timer.
	clock = clock.Add(time.Minute)
	require.NoError(t, m.Send(context.Background(), "hello"))
	assert.False(t, m.Inactive(clock.Add(10*time.Second)))
	assert.True(t, m.Inactive(clock.Add(41*time.Second)))
}

func TestPurchaseCreditsAndConfirms(t *testing.T) {
	backend := &fakeBackend{balance: 2}
	m, _ := newTestManager(t, backend, false)
	m.RefreshBalance(context.Background())
	require.NoError(t, m.Send(context.Background(), "hi")) // trips the buy prompt
	require.True(t, m.ShowBuy())

	require.NoError(t, m.Purchase(context.Background(), time.Millisecond))

	assert.Equal(t, 102, m.Tokens())
	assert.False(t, m.ShowBuy())
	msgs := m.Messages()
	assert.Equal(t, CreditedText, msgs[len(msgs)-1].Text)
}

func TestPurchaseHonorsContextCancellation(t *testing.T) {
	m, _ := newTestManager(t, &fakeBackend{}, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Purchase(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Tokens())
}

func TestOnMessageHookSeesEveryAppend(t *testing.T) {
	var seen []string
	st := store.NewMemStore()
	backend := &fakeBackend{chatResp: api.ChatResponse{Response: "ok"}}
	m := NewManager(backend, st, Options{
		MemoryKey: "k",
		DemoMode:  true,
		OnMessage: func(msg Message) { seen = append(seen, msg.Sender+":"+msg.Text) },
	})
	m.Init()
	require.NoError(t, m.Send(context.Background(), "hello"))

	assert.Equal(t, []string{"user:hello", "bot:ok"}, seen)
}
