package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zeppex/mvp-sub001/clock"
	"github.com/zeppex/mvp-sub001/repository"
)

// ExpirySweeper periodically scans live orders and expires any whose
// deadline has passed. It is a correctness backstop behind the lazy checks
// on the read path; the interval only needs to be well under the TTL, not
// tight.
type ExpirySweeper struct {
	store    *repository.OrderStore
	engine   *OrderService
	clk      clock.Clock
	interval time.Duration
	logger   *zap.Logger
}

func NewExpirySweeper(
	store *repository.OrderStore,
	engine *OrderService,
	clk clock.Clock,
	interval time.Duration,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		store:    store,
		engine:   engine,
		clk:      clk,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on every tick until the context is cancelled. Intended to be
// started as `go sweeper.Run(ctx)` from main.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce expires every live order whose deadline has passed. Expire is
// idempotent, so racing a concurrent completion or cancellation is harmless.
func (s *ExpirySweeper) SweepOnce() int {
	now := s.clk.Now()
	swept := 0

	for _, order := range s.store.Live() {
		if order.DeadlinePassed(now) {
			s.engine.Expire(order.ID)
			swept++
		}
	}
	return swept
}
