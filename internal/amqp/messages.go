package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/core"
)

// BudgetAlertMessage carries an advisory budget threshold signal to
// external consumers (notification bots, dashboards). The ledger
// publishes it best-effort after a create; the primary operation never
// depends on delivery.
type BudgetAlertMessage struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Spent     float64   `json:"spent"`
	Limit     float64   `json:"limit"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage builds a message from a budget signal.
func NewBudgetAlertMessage(sig core.BudgetSignal) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		ID:        uuid.New().String(),
		Category:  sig.Category,
		Status:    string(sig.Status),
		Spent:     sig.Spent,
		Limit:     sig.Limit,
		Currency:  sig.Currency,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON parses a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
