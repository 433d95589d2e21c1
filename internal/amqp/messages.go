package amqp

import (
	"encoding/json"
	"time"

	"spendtrack/internal/core"
)

// ExpenseReviewedMessage announces a completed review. It carries only the
// id and terminal status; the worker fetches the full expense from the
// ledger so the export always reflects durable state.
type ExpenseReviewedMessage struct {
	ID        int64              `json:"id"`
	Status    core.ExpenseStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

func NewExpenseReviewedMessage(id int64, status core.ExpenseStatus) *ExpenseReviewedMessage {
	return &ExpenseReviewedMessage{
		ID:        id,
		Status:    status,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExpenseReviewedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseReviewedMessageFromJSON creates a message from JSON bytes.
func ExpenseReviewedMessageFromJSON(data []byte) (*ExpenseReviewedMessage, error) {
	var msg ExpenseReviewedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
