package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeppex/mvp-sub001/clock"
	"github.com/zeppex/mvp-sub001/models"
	"github.com/zeppex/mvp-sub001/repository"
)

// errInvalidTransition signals inside a store transition that the requested
// status change is not legal from the order's current status.
var errInvalidTransition = errors.New("invalid transition")

// OrderEventPublisher emits lifecycle events. A nil publisher is tolerated
// and publish failures never fail the triggering request.
type OrderEventPublisher interface {
	Publish(event models.OrderEvent) error
}

// OrderArchiver persists terminal-state orders for audit. Best-effort.
type OrderArchiver interface {
	Archive(ctx context.Context, order models.PaymentOrder) error
}

// CreateOrderInput is the engine-level create request.
type CreateOrderInput struct {
	PosID       string
	Amount      int64
	Currency    string
	Description string
}

// OrderService is the payment order lifecycle engine. All status mutation in
// the system goes through its transition methods; the store is never written
// directly by callers.
type OrderService struct {
	store           *repository.OrderStore
	terminals       TerminalDirectory
	clk             clock.Clock
	ttl             time.Duration
	defaultCurrency string
	events          OrderEventPublisher
	archive         OrderArchiver
	logger          *zap.Logger
}

func NewOrderService(
	store *repository.OrderStore,
	terminals TerminalDirectory,
	clk clock.Clock,
	ttl time.Duration,
	defaultCurrency string,
	events OrderEventPublisher,
	archive OrderArchiver,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		store:           store,
		terminals:       terminals,
		clk:             clk,
		ttl:             ttl,
		defaultCurrency: defaultCurrency,
		events:          events,
		archive:         archive,
		logger:          logger,
	}
}

// TTL returns the configured order time-to-live.
func (s *OrderService) TTL() time.Duration {
	return s.ttl
}

// Create inserts a new ACTIVE order for the terminal, cancelling any order
// still live on it. Concurrent creates on the same terminal serialize in the
// store, so exactly one of them ends up current.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (models.PaymentOrder, *ServiceError) {
	if in.Amount <= 0 {
		return models.PaymentOrder{}, invalidInput("amount must be a positive number of minor units")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.PaymentOrder{}, invalidInput("description is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	term, err := s.terminals.Resolve(ctx, in.PosID)
	if err != nil {
		if errors.Is(err, ErrTerminalNotFound) {
			return models.PaymentOrder{}, notFound("terminal not found")
		}
		s.logger.Error("terminal resolution failed", zap.String("pos_id", in.PosID), zap.Error(err))
		return models.PaymentOrder{}, internal("terminal resolution failed")
	}

	now := s.clk.Now()

	created, superseded := s.store.CreateForPos(in.PosID,
		func(prev *models.PaymentOrder) bool {
			if !prev.Live() {
				return false
			}
			prev.Status = models.StatusCancelled
			cancelledAt := now
			prev.CancelledAt = &cancelledAt
			prev.CancelReason = models.CancelReasonSuperseded
			return true
		},
		func() models.PaymentOrder {
			return models.PaymentOrder{
				ID:          uuid.New(),
				PosID:       term.PosID,
				BranchID:    term.BranchID,
				MerchantID:  term.MerchantID,
				Amount:      in.Amount,
				Currency:    currency,
				Description: in.Description,
				Status:      models.StatusActive,
				CreatedAt:   now,
				ExpiresAt:   now.Add(s.ttl),
			}
		},
	)

	if superseded != nil {
		s.logger.Info("superseded live order",
			zap.String("pos_id", in.PosID),
			zap.String("order_id", superseded.ID.String()),
		)
		s.publish(models.EventOrderCancelled, *superseded)
		s.archiveOrder(*superseded)
	}
	s.publish(models.EventOrderCreated, created)

	return created, nil
}

// TriggerInProgress moves an ACTIVE order to IN_PROGRESS, typically when the
// customer picks a payment rail. The deadline is not extended; the order can
// still expire while IN_PROGRESS.
func (s *OrderService) TriggerInProgress(id uuid.UUID) (models.PaymentOrder, *ServiceError) {
	// An overdue ACTIVE order must expire rather than move forward.
	s.Expire(id)

	order, err := s.store.Update(id, func(o *models.PaymentOrder) error {
		if o.Status != models.StatusActive {
			return errInvalidTransition
		}
		o.Status = models.StatusInProgress
		return nil
	})
	if serr := s.transitionError(err, order, "trigger in progress"); serr != nil {
		return models.PaymentOrder{}, serr
	}

	s.publish(models.EventOrderInProgress, order)
	return order, nil
}

// Complete marks a live order COMPLETED. Duplicate completion callbacks are
// absorbed: completing an already-COMPLETED order succeeds and leaves
// completedAt at the first call's timestamp.
func (s *OrderService) Complete(id uuid.UUID) (models.PaymentOrder, *ServiceError) {
	already := false
	order, err := s.store.Update(id, func(o *models.PaymentOrder) error {
		if o.Status == models.StatusCompleted {
			already = true
			return nil
		}
		if !o.Live() {
			return errInvalidTransition
		}
		o.Status = models.StatusCompleted
		completedAt := s.clk.Now()
		o.CompletedAt = &completedAt
		return nil
	})
	if serr := s.transitionError(err, order, "complete"); serr != nil {
		return models.PaymentOrder{}, serr
	}
	if already {
		return order, nil
	}

	s.publish(models.EventOrderCompleted, order)
	s.archiveOrder(order)
	return order, nil
}

// Cancel marks a live order CANCELLED with the given reason.
func (s *OrderService) Cancel(id uuid.UUID, reason string) (models.PaymentOrder, *ServiceError) {
	order, err := s.store.Update(id, func(o *models.PaymentOrder) error {
		if !o.Live() {
			return errInvalidTransition
		}
		o.Status = models.StatusCancelled
		cancelledAt := s.clk.Now()
		o.CancelledAt = &cancelledAt
		o.CancelReason = reason
		return nil
	})
	if serr := s.transitionError(err, order, "cancel"); serr != nil {
		return models.PaymentOrder{}, serr
	}

	s.publish(models.EventOrderCancelled, order)
	s.archiveOrder(order)
	return order, nil
}

// Expire flips a live order past its deadline to EXPIRED. Fire-and-forget
// idempotent: unknown ids, orders already in a terminal state and orders
// whose deadline has not passed are all silently left alone, which resolves
// the race between a completion/cancellation and the sweep.
func (s *OrderService) Expire(id uuid.UUID) {
	now := s.clk.Now()
	expired := false

	order, err := s.store.Update(id, func(o *models.PaymentOrder) error {
		if !o.Live() || !o.DeadlinePassed(now) {
			return nil
		}
		o.Status = models.StatusExpired
		expired = true
		return nil
	})
	if err != nil || !expired {
		return
	}

	s.logger.Info("order expired",
		zap.String("order_id", order.ID.String()),
		zap.String("pos_id", order.PosID),
	)
	s.publish(models.EventOrderExpired, order)
	s.archiveOrder(order)
}

// transitionError maps store/transition failures onto service errors.
func (s *OrderService) transitionError(err error, order models.PaymentOrder, action string) *ServiceError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrOrderNotFound):
		return notFound("order not found")
	case errors.Is(err, errInvalidTransition):
		return invalidState(fmt.Sprintf("cannot %s order in status %s", action, order.Status))
	default:
		s.logger.Error("order transition failed", zap.String("action", action), zap.Error(err))
		return internal("order transition failed")
	}
}

func (s *OrderService) publish(eventType string, order models.PaymentOrder) {
	if s.events == nil {
		return
	}
	event := models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID.String(),
		PosID:      order.PosID,
		BranchID:   order.BranchID,
		MerchantID: order.MerchantID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Status:     order.Status,
		Timestamp:  s.clk.Now(),
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", eventType),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) archiveOrder(order models.PaymentOrder) {
	if s.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.archive.Archive(ctx, order); err != nil {
		s.logger.Warn("failed to archive order",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
