package models

import "time"

// Order lifecycle event types published to Kafka.
const (
	EventOrderCreated    = "order.created"
	EventOrderInProgress = "order.in_progress"
	EventOrderCompleted  = "order.completed"
	EventOrderCancelled  = "order.cancelled"
	EventOrderExpired    = "order.expired"
)

// OrderEvent is the message emitted on every order status change.
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	PosID      string      `json:"pos_id"`
	BranchID   string      `json:"branch_id"`
	MerchantID string      `json:"merchant_id"`
	Amount     int64       `json:"amount"`
	Currency   string      `json:"currency"`
	Status     OrderStatus `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
}
