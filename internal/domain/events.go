package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferLifecycleEvent is the message published to RabbitMQ after a transfer
// is created and after it reaches a terminal status. The notification-service
// consumes it to email the user; this service never waits on delivery.
type TransferLifecycleEvent struct {
	EventID      uuid.UUID       `json:"event_id"`
	EventType    string          `json:"event_type"` // e.g. 'transfer.created', 'transfer.status.completed'
	TransferID   uuid.UUID       `json:"transfer_id"`
	TransferCode string          `json:"transfer_code"`
	UserID       uuid.UUID       `json:"user_id"`
	TransferType string          `json:"transfer_type"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Currency     string          `json:"currency"`
	Message      string          `json:"message,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
