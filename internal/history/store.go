// Package history provides SQLite-backed local archiving: past chat
// conversations, plus a cache of the last dashboard reads so status, token
// and lead views can render when the backend is unreachable.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nexus-ai/nexus/internal/api"
)

// Store provides SQLite-backed persistence for local history.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		tenant TEXT NOT NULL,
		demo INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id)
	);

	CREATE TABLE IF NOT EXISTS transactions_cache (
		id INTEGER PRIMARY KEY,
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		detail TEXT,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS leads_cache (
		id INTEGER PRIMARY KEY,
		name TEXT,
		email TEXT,
		phone TEXT,
		message TEXT,
		created_at DATETIME
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Conversation is one archived chat session.
type Conversation struct {
	ID        string
	Tenant    string
	Demo      bool
	StartedAt time.Time
}

// ArchivedMessage is one archived transcript entry.
type ArchivedMessage struct {
	ID             int64
	ConversationID string
	Sender         string
	Content        string
	Timestamp      time.Time
}

// StartConversation creates a new conversation row and returns it.
func (s *Store) StartConversation(tenant string, demo bool) (*Conversation, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO conversations (id, tenant, demo, started_at) VALUES (?, ?, ?, ?)`,
		id, tenant, demo, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	return &Conversation{ID: id, Tenant: tenant, Demo: demo, StartedAt: now}, nil
}

// AddMessage archives a transcript message under a conversation.
func (s *Store) AddMessage(conversationID, sender, content string) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (conversation_id, sender, content, timestamp) VALUES (?, ?, ?, ?)`,
		conversationID, sender, content, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetMessages retrieves all archived messages for a conversation.
func (s *Store) GetMessages(conversationID string) ([]ArchivedMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, sender, content, timestamp
		 FROM messages
		 WHERE conversation_id = ?
		 ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []ArchivedMessage
	for rows.Next() {
		var msg ArchivedMessage
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return messages, nil
}

// ListConversations returns the most recent conversations.
func (s *Store) ListConversations(limit int) ([]Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, tenant, demo, started_at
		 FROM conversations
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Tenant, &c.Demo, &c.StartedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return convs, nil
}

// CacheTransactions replaces the cached token ledger with txs.
func (s *Store) CacheTransactions(txs []api.TokenTransaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM transactions_cache`); err != nil {
		return fmt.Errorf("clear transactions cache: %w", err)
	}
	for _, t := range txs {
		_, err := tx.Exec(
			`INSERT INTO transactions_cache (id, amount, type, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Amount, t.Type, t.Detail, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

// CachedTransactions returns the cached token ledger, newest first.
func (s *Store) CachedTransactions() ([]api.TokenTransaction, error) {
	rows, err := s.db.Query(
		`SELECT id, amount, type, COALESCE(detail, ''), created_at
		 FROM transactions_cache
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []api.TokenTransaction
	for rows.Next() {
		var t api.TokenTransaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Type, &t.Detail, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return txs, nil
}

// CacheLeads replaces the cached leads with ls.
func (s *Store) CacheLeads(ls []api.Lead) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM leads_cache`); err != nil {
		return fmt.Errorf("clear leads cache: %w", err)
	}
	for _, l := range ls {
		_, err := tx.Exec(
			`INSERT INTO leads_cache (id, name, email, phone, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Email, l.Phone, l.Message, l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}
	}

	return tx.Commit()
}

// CachedLeads returns the cached leads, newest first.
func (s *Store) CachedLeads() ([]api.Lead, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(message, ''), created_at
		 FROM leads_cache
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query leads cache: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ls []api.Lead
	for rows.Next() {
		var l api.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		ls = append(ls, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return ls, nil
}
