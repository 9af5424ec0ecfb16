package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/zeppex/mvp-sub001/clock"
	"github.com/zeppex/mvp-sub001/models"
	"github.com/zeppex/mvp-sub001/repository"
)

// CurrentOrderView is the public projection of a terminal's live order,
// polled by the customer-facing payment page.
type CurrentOrderView struct {
	OrderID     string             `json:"order_id"`
	Amount      int64              `json:"amount"`
	Currency    string             `json:"currency"`
	Description string             `json:"description"`
	Status      models.OrderStatus `json:"status"`
	ExpiresIn   int64              `json:"expires_in"` // milliseconds
}

// OrderQueryService is the read side of the order lifecycle. Every read
// applies lazy expiry first, so a caller never observes a live order whose
// deadline has passed, whether or not the background sweep has run.
type OrderQueryService struct {
	store  *repository.OrderStore
	engine *OrderService
	clk    clock.Clock
}

func NewOrderQueryService(store *repository.OrderStore, engine *OrderService, clk clock.Clock) *OrderQueryService {
	return &OrderQueryService{store: store, engine: engine, clk: clk}
}

// GetCurrent returns the public projection of the terminal's live order, or
// not found when the terminal has none (including when the only candidate
// just expired).
func (q *OrderQueryService) GetCurrent(posID string) (CurrentOrderView, *ServiceError) {
	order, ok := q.store.CurrentForPos(posID)
	if !ok {
		return CurrentOrderView{}, notFound("no current order for terminal")
	}

	now := q.clk.Now()
	if order.DeadlinePassed(now) {
		q.engine.Expire(order.ID)
		return CurrentOrderView{}, notFound("no current order for terminal")
	}

	return CurrentOrderView{
		OrderID:     order.ID.String(),
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: order.Description,
		Status:      order.Status,
		ExpiresIn:   order.ExpiresAt.Sub(now).Milliseconds(),
	}, nil
}

// GetByID returns the full order record with merchant/branch context. An
// overdue live order is expired before it is returned, so the caller sees
// EXPIRED rather than a stale live status.
func (q *OrderQueryService) GetByID(id uuid.UUID) (models.PaymentOrder, *ServiceError) {
	order, err := q.store.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return models.PaymentOrder{}, notFound("order not found")
		}
		return models.PaymentOrder{}, internal("order lookup failed")
	}

	if order.Live() && order.DeadlinePassed(q.clk.Now()) {
		q.engine.Expire(order.ID)
		order, err = q.store.GetByID(id)
		if err != nil {
			return models.PaymentOrder{}, internal("order lookup failed")
		}
	}

	return order, nil
}

// ListForPos returns the terminal's order history, newest first, with lazy
// expiry applied to any overdue live entries.
func (q *OrderQueryService) ListForPos(posID string) []models.PaymentOrder {
	now := q.clk.Now()

	orders := q.store.ForPos(posID)
	stale := false
	for _, o := range orders {
		if o.Live() && o.DeadlinePassed(now) {
			q.engine.Expire(o.ID)
			stale = true
		}
	}
	if stale {
		orders = q.store.ForPos(posID)
	}
	return orders
}
