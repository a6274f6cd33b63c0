package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage announces that a mutation was persisted. Consumers
// reload the ledger themselves; the message carries only the operation and
// the entry it touched.
type LedgerChangedMessage struct {
	Operation string    `json:"operation"` // create, update or delete
	EntryID   string    `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(operation, entryID string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Operation: operation,
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
