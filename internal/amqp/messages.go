package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerUpdatedMessage is emitted after a month has been merged and the
// ledger persisted.
type LedgerUpdatedMessage struct {
	Month     string    `json:"month"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerUpdatedMessage(month string, rows int) LedgerUpdatedMessage {
	return LedgerUpdatedMessage{
		Month:     month,
		Rows:      rows,
		Timestamp: time.Now().UTC(),
	}
}

func (m LedgerUpdatedMessage) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger update message: %w", err)
	}
	return data, nil
}

func LedgerUpdatedMessageFromJSON(data []byte) (LedgerUpdatedMessage, error) {
	var m LedgerUpdatedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return LedgerUpdatedMessage{}, fmt.Errorf("unmarshal ledger update message: %w", err)
	}
	return m, nil
}
