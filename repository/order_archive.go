package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zeppex/mvp-sub001/models"
)

// GormOrderArchive writes terminal-state orders to the Postgres audit table.
type GormOrderArchive struct {
	db *gorm.DB
}

func NewGormOrderArchive(db *gorm.DB) *GormOrderArchive {
	return &GormOrderArchive{db: db}
}

// Archive upserts the order's audit row. Upsert keeps duplicate settlement
// callbacks and supersede/expire races from erroring on the primary key.
func (a *GormOrderArchive) Archive(ctx context.Context, order models.PaymentOrder) error {
	row := models.ArchivedOrder{
		OrderID:      order.ID,
		PosID:        order.PosID,
		BranchID:     order.BranchID,
		MerchantID:   order.MerchantID,
		Amount:       order.Amount,
		Currency:     order.Currency,
		Description:  order.Description,
		Status:       string(order.Status),
		CancelReason: order.CancelReason,
		OrderCreated: order.CreatedAt,
		ExpiresAt:    order.ExpiresAt,
		CompletedAt:  order.CompletedAt,
		CancelledAt:  order.CancelledAt,
	}

	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}
