package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedOrder is the audit row written when an order reaches a terminal
// state. The live store stays in memory; this table is the durable record
// operators query after the fact.
type ArchivedOrder struct {
	OrderID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PosID        string     `gorm:"type:varchar(64);index;not null"`
	BranchID     string     `gorm:"type:varchar(64);index;not null"`
	MerchantID   string     `gorm:"type:varchar(64);index;not null"`
	Amount       int64      `gorm:"not null"` // minor units
	Currency     string     `gorm:"type:varchar(10);not null"`
	Description  string     `gorm:"type:varchar(1024)"`
	Status       string     `gorm:"type:varchar(20);not null"`
	CancelReason string     `gorm:"type:varchar(64)"`
	OrderCreated time.Time  `gorm:"not null"`
	ExpiresAt    time.Time  `gorm:"not null"`
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	ArchivedAt   time.Time `gorm:"autoCreateTime"`
}
