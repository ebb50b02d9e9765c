package log

import (
	"testing"
)

func TestLoggerAppendAndReadAll(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventLogin, Email: "owner@acme.test"},
		{Event: EventChatSent, Tenant: "acme", Tokens: 5, Balance: 95},
		{Event: EventChatFailed, Reason: "Insufficient tokens"},
	}
	for _, e := range events {
		if err := logger.Append(e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ReadAll: got %d events, want 3", len(got))
	}
	if got[0].Event != EventLogin || got[0].Email != "owner@acme.test" {
		t.Errorf("event 0: got %+v", got[0])
	}
	if got[1].Balance != 95 {
		t.Errorf("event 1 balance: got %d, want 95", got[1].Balance)
	}
	if got[0].Time.IsZero() {
		t.Error("Append should stamp zero times")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("ReadAll on missing file: got %d events, want 0", len(events))
	}
}
