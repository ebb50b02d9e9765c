// Package log provides structured event logging.
// This file appends JSON events to events.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventLogin           = "login"
	EventLogout          = "logout"
	EventChatSent        = "chat_sent"
	EventChatFailed      = "chat_failed"
	EventTokensDeducted  = "tokens_deducted"
	EventTokensCredited  = "tokens_credited"
	EventHistoryCleared  = "history_cleared"
	EventBuyPrompt       = "buy_prompt"
	EventCheckoutCreated = "checkout_created"
)

// LogEvent represents a single structured event written to the log.
type LogEvent struct {
	Time     time.Time `json:"time"`
	Event    string    `json:"event"`
	Email    string    `json:"email,omitempty"`
	Tenant   string    `json:"tenant,omitempty"`
	Message  string    `json:"message,omitempty"`
	Tokens   int       `json:"tokens,omitempty"`
	Balance  int       `json:"balance,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
	Demo     bool      `json:"demo,omitempty"`
	Method   string    `json:"method,omitempty"`
	Amount   int       `json:"amount,omitempty"`
	Checkout string    `json:"checkout,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to .nexus/events.jsonl inside dir.
// Creates the .nexus/ directory if it does not already exist.
// Does not truncate an existing log file.
func NewLogger(dir string) (*Logger, error) {
	nexusDir := filepath.Join(dir, ".nexus")
	if err := os.MkdirAll(nexusDir, 0755); err != nil {
		return nil, fmt.Errorf("create .nexus directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(nexusDir, "events.jsonl"),
	}, nil
}

// Append writes a single LogEvent as one JSON line to the log file.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// The file is opened in append mode, written to, and then closed.
// Thread-safe via mutex.
func (l *Logger) Append(event LogEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}
