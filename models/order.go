package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a payment order.
type OrderStatus string

const (
	StatusActive     OrderStatus = "ACTIVE"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusExpired    OrderStatus = "EXPIRED"
)

// Live reports whether an order in this status still occupies its terminal.
func (s OrderStatus) Live() bool {
	return s == StatusActive || s == StatusInProgress
}

// Terminal reports whether this status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusExpired
}

// CancelReasonSuperseded is recorded when a newer order on the same terminal
// displaces a still-live one.
const CancelReasonSuperseded = "superseded"

// PaymentOrder is a single crypto payment request on a POS terminal.
// Identity, amount and expiry are fixed at creation; only the status and the
// matching terminal-state timestamp ever change afterwards.
type PaymentOrder struct {
	ID           uuid.UUID   `json:"id"`
	PosID        string      `json:"pos_id"`
	BranchID     string      `json:"branch_id"`
	MerchantID   string      `json:"merchant_id"`
	Amount       int64       `json:"amount"` // minor units (cents)
	Currency     string      `json:"currency"`
	Description  string      `json:"description"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
	CancelReason string      `json:"cancel_reason,omitempty"`
}

// Live reports whether the order currently occupies its terminal.
func (o *PaymentOrder) Live() bool {
	return o.Status.Live()
}

// DeadlinePassed reports whether the order's TTL has elapsed at the given
// instant. It says nothing about the recorded status; callers combine it with
// Live to decide whether an expiry transition is due.
func (o *PaymentOrder) DeadlinePassed(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
