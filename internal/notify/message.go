// Package notify publishes budget alerts to a message broker and keeps the
// worker from repeating an alert it has already sent.
package notify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/budgeting"
	"smartspend/internal/models"
	"smartspend/internal/period"
	"smartspend/internal/uuid"
)

// AlertRoutingKey is the routing key every alert is published with.
const AlertRoutingKey = "budget.alert"

// BudgetAlertMessage is the payload published for one alert.
type BudgetAlertMessage struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Category       models.Category `json:"category"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	State          string          `json:"state"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount"`
	SpentAmount    decimal.Decimal `json:"spentAmount"`
	Percentage     int64           `json:"percentage"`
	AlertThreshold int             `json:"alertThreshold"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewBudgetAlertMessage builds the message for alert a raised for userID in p.
func NewBudgetAlertMessage(userID string, p period.Period, a budgeting.Alert, now time.Time) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		ID:             uuid.New(),
		UserID:         userID,
		Category:       a.Category,
		Month:          p.Month,
		Year:           p.Year,
		State:          a.State(),
		BudgetAmount:   a.BudgetAmount,
		SpentAmount:    a.SpentAmount,
		Percentage:     a.Percentage,
		AlertThreshold: a.AlertThreshold,
		Timestamp:      now.UTC(),
	}
}

// Key identifies the alert for suppression purposes.
func (m *BudgetAlertMessage) Key() AlertKey {
	return AlertKey{UserID: m.UserID, Category: m.Category, Year: m.Year, Month: m.Month, State: m.State}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes a message published by PublishAlert.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
