package amqp

import (
	"testing"
	"time"
)

func TestLedgerUpdatedMessageRoundTrip(t *testing.T) {
	msg := LedgerUpdatedMessage{
		Month:     "2025-05",
		Rows:      3,
		Timestamp: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := LedgerUpdatedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.Month != msg.Month {
		t.Errorf("Month = %q, want %q", got.Month, msg.Month)
	}
	if got.Rows != msg.Rows {
		t.Errorf("Rows = %d, want %d", got.Rows, msg.Rows)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestLedgerUpdatedMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerUpdatedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestNewLedgerUpdatedMessageSetsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	msg := NewLedgerUpdatedMessage("2025-05", 4)
	after := time.Now().UTC()

	if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside [%v, %v]", msg.Timestamp, before, after)
	}
	if msg.Month != "2025-05" || msg.Rows != 4 {
		t.Errorf("unexpected fields: %+v", msg)
	}
}
