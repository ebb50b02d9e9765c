// Package chat drives one conversational widget instance: transcript
// persistence, token accounting, request dispatch and inactivity prompting.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nexus-ai/nexus/internal/api"
	"github.com/nexus-ai/nexus/internal/log"
	"github.com/nexus-ai/nexus/internal/store"
)

const (
	// MessageCost is the token price of one chat exchange.
	MessageCost = 5
	// PurchaseCredit is the token amount granted by the simulated purchase.
	PurchaseCredit = 100
	// MaxMemoryBytes caps the serialized transcript size; beyond it the
	// history is discarded.
	MaxMemoryBytes = 10 * 1024 * 1024
	// InactivityDelay is how long the transcript must stay unchanged before
	// the "still there?" prompt shows.
	InactivityDelay = 40 * time.Second
)

// Transcript message texts.
const (
	GreetingText    = "Hi! \U0001F44B What brings you here today?"
	ClearedText     = "Chat history cleared."
	CreditedText    = "✅ 100 tokens credited! You can continue chatting now."
	GenericFailText = "Sorry, something went wrong. Please try again."
	fallbackDetail  = "Sorry, something went wrong."
	overflowNotice  = "Chat memory is full. The chat history will be cleared."
)

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

var socialProofRe = regexp.MustCompile(`(?i)a lot of people love`)

// Message is one transcript entry.
type Message struct {
	Sender          string `json:"sender"`
	Text            string `json:"text"`
	Visual          string `json:"visual,omitempty"`
	ContactWhatsapp string `json:"contact_whatsapp,omitempty"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	ShowContact     bool   `json:"show_contact,omitempty"`
	SocialProof     bool   `json:"social_proof,omitempty"`
}

// IsVideo reports whether a visual URL should render as video rather than
// an image.
func IsVideo(visual string) bool {
	return strings.HasSuffix(visual, ".mp4")
}

// Backend is the subset of the API client the manager needs.
type Backend interface {
	TokenBalance(ctx context.Context) (int, error)
	DeductTokens(ctx context.Context, amount int) (int, error)
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
}

// Options configures a Manager.
type Options struct {
	MemoryKey  string
	DemoMode   bool
	BusinessID int
	Events     *log.Logger      // optional activity log
	OnMessage  func(Message)    // optional hook, called for every appended message
	Now        func() time.Time // test clock; defaults to time.Now
}

// Manager owns the transcript and token state for one widget instance.
// All state is mutated under mu; network calls happen outside the lock so a
// slow backend never blocks readers.
type Manager struct {
	backend Backend
	store   store.Store
	opts    Options
	now     func() time.Time

	mu         sync.Mutex
	messages   []Message
	sending    bool
	tokens     int
	showBuy    bool
	notice     string
	lastChange time.Time
}

// NewManager creates a Manager. Call Init before use.
func NewManager(backend Backend, st store.Store, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		backend: backend,
		store:   st,
		opts:    opts,
		now:     now,
	}
}

// Init loads the persisted transcript, seeding a greeting if absent or
// unreadable.
func (m *Manager) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.Get(m.opts.MemoryKey)
	if err == nil {
		var msgs []Message
		if jsonErr := json.Unmarshal(data, &msgs); jsonErr == nil && len(msgs) > 0 {
			m.messages = msgs
			m.lastChange = m.now()
			return
		}
		log.Diag.Warn().Str("key", m.opts.MemoryKey).Msg("stored transcript unreadable, reseeding")
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Diag.Error().Err(err).Msg("failed to load transcript")
	}

	m.messages = []Message{{Sender: SenderBot, Text: GreetingText}}
	m.lastChange = m.now()
	m.persistLocked()
}

// Messages returns a copy of the transcript in insertion order.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Sending reports whether a send is in flight.
func (m *Manager) Sending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// Tokens returns the current balance. Meaningless in demo mode.
func (m *Manager) Tokens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens
}

// TokenLabel returns the balance badge text: the literal "Free" marker in
// demo mode, otherwise the numeric balance.
func (m *Manager) TokenLabel() string {
	if m.opts.DemoMode {
		return "Free"
	}
	return fmt.Sprintf("%d tokens", m.Tokens())
}

// DemoMode reports whether token accounting is disabled.
func (m *Manager) DemoMode() bool {
	return m.opts.DemoMode
}

// ShowBuy reports whether the buy-tokens prompt should be visible.
func (m *Manager) ShowBuy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showBuy
}

// DismissBuy hides the buy-tokens prompt.
func (m *Manager) DismissBuy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showBuy = false
}

// Notice returns and clears the pending user notice (e.g. the memory-full
// warning). Empty when nothing is pending.
func (m *Manager) Notice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.notice
	m.notice = ""
	return n
}

// Inactive reports whether the "still there?" prompt should show: no
// transcript change for InactivityDelay and no send in flight.
func (m *Manager) Inactive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.sending && !m.lastChange.IsZero() && now.Sub(m.lastChange) >= InactivityDelay
}

// Clear empties storage and resets the transcript to a single marker
// message.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()

	if m.opts.Events != nil {
		_ = m.opts.Events.Append(log.LogEvent{Event: log.EventHistoryCleared, Demo: m.opts.DemoMode})
	}
}

func (m *Manager) clearLocked() {
	if err := m.store.Delete(m.opts.MemoryKey); err != nil {
		log.Diag.Error().Err(err).Msg("failed to clear transcript storage")
	}
	m.messages = []Message{{Sender: SenderBot, Text: ClearedText}}
	m.lastChange = m.now()
	m.persistLocked()
}

// appendLocked adds a message, stamps the change time and re-persists.
func (m *Manager) appendLocked(msg Message) {
	m.messages = append(m.messages, msg)
	m.lastChange = m.now()
	m.persistLocked()

	if m.opts.OnMessage != nil {
		m.opts.OnMessage(msg)
	}
}

// persistLocked serializes the transcript. If the serialized size exceeds
// MaxMemoryBytes the transcript is discarded and the user is notified.
func (m *Manager) persistLocked() {
	data, err := json.Marshal(m.messages)
	if err != nil {
		log.Diag.Error().Err(err).Msg("failed to serialize transcript")
		return
	}

	if len(data) > MaxMemoryBytes {
		m.notice = overflowNotice
		m.clearLocked()
		return
	}

	if err := m.store.Set(m.opts.MemoryKey, data); err != nil {
		log.Diag.Error().Err(err).Msg("failed to persist transcript")
	}
}

// RefreshBalance fetches the current token balance. No-op in demo mode.
func (m *Manager) RefreshBalance(ctx context.Context) {
	if m.opts.DemoMode {
		return
	}
	balance, err := m.backend.TokenBalance(ctx)
	if err != nil {
		log.Diag.Error().Err(err).Msg("error fetching token balance")
		return
	}

	m.mu.Lock()
	m.tokens = balance
	m.mu.Unlock()
}

// Send runs one chat exchange. The returned error is non-nil only when the
// token deduction fails; every other failure is converted into a bot
// message. The in-flight guard makes a second Send a no-op while one is
// outstanding.
func (m *Manager) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return nil
	}
	// A new send clears any pending inactivity prompt immediately.
	m.lastChange = m.now()

	if !m.opts.DemoMode && m.tokens < MessageCost {
		m.showBuy = true
		m.mu.Unlock()
		if m.opts.Events != nil {
			_ = m.opts.Events.Append(log.LogEvent{Event: log.EventBuyPrompt, Balance: m.Tokens()})
		}
		return nil
	}

	m.appendLocked(Message{Sender: SenderUser, Text: text})
	m.sending = true
	history := m.historyLocked()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
	}()

	if !m.opts.DemoMode {
		balance, err := m.backend.DeductTokens(ctx, MessageCost)
		if err != nil {
			log.Diag.Error().Err(err).Msg("token deduction failed")
			if m.opts.Events != nil {
				_ = m.opts.Events.Append(log.LogEvent{Event: log.EventChatFailed, Reason: "deduction", Error: err.Error()})
			}
			return fmt.Errorf("deduct tokens: %w", err)
		}
		m.mu.Lock()
		m.tokens = balance
		m.mu.Unlock()
		if m.opts.Events != nil {
			_ = m.opts.Events.Append(log.LogEvent{Event: log.EventTokensDeducted, Tokens: MessageCost, Balance: balance})
		}
	}

	req := api.ChatRequest{
		Message:    text,
		DemoMode:   m.opts.DemoMode,
		BusinessID: m.opts.BusinessID,
	}
	if m.opts.DemoMode {
		// Non-demo mode sends no history; the server keeps session context.
		req.History = history
	}

	resp, err := m.backend.Chat(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		m.appendLocked(Message{
			Sender:          SenderBot,
			Text:            resp.Response,
			Visual:          resp.VisualURL,
			ContactWhatsapp: resp.ContactWhatsapp,
			ContactPhone:    resp.ContactPhone,
			ShowContact:     resp.ShowContact,
			SocialProof:     socialProofRe.MatchString(resp.Response),
		})
		if m.opts.Events != nil {
			_ = m.opts.Events.Append(log.LogEvent{Event: log.EventChatSent, Demo: m.opts.DemoMode, Balance: m.tokens})
		}

	case isAPIError(err):
		m.appendLocked(Message{Sender: SenderBot, Text: api.Detail(err, fallbackDetail)})
		if api.IsPaymentRequired(err) {
			m.showBuy = true
		}
		log.Diag.Error().Err(err).Msg("chat request rejected")

	default:
		m.appendLocked(Message{Sender: SenderBot, Text: GenericFailText})
		log.Diag.Error().Err(err).Msg("chat request failed")
	}

	return nil
}

// historyLocked snapshots the transcript as wire history entries.
func (m *Manager) historyLocked() []api.HistoryEntry {
	out := make([]api.HistoryEntry, len(m.messages))
	for i, msg := range m.messages {
		out[i] = api.HistoryEntry{Sender: msg.Sender, Text: msg.Text}
	}
	return out
}

// Purchase simulates a token purchase: after delay it credits
// PurchaseCredit tokens, hides the buy prompt and appends a confirmation.
// Placeholder for the real checkout flow, which lives outside this client.
func (m *Manager) Purchase(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	m.mu.Lock()
	m.tokens += PurchaseCredit
	m.showBuy = false
	m.appendLocked(Message{Sender: SenderBot, Text: CreditedText})
	balance := m.tokens
	m.mu.Unlock()

	if m.opts.Events != nil {
		_ = m.opts.Events.Append(log.LogEvent{Event: log.EventTokensCredited, Tokens: PurchaseCredit, Balance: balance})
	}
	return nil
}

func isAPIError(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr)
}
