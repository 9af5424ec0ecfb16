package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zeppex/mvp-sub001/models"
)

func newTestOrder(posID string, createdAt time.Time) models.PaymentOrder {
	return models.PaymentOrder{
		ID:          uuid.New(),
		PosID:       posID,
		BranchID:    "branch-1",
		MerchantID:  "merchant-1",
		Amount:      2550,
		Currency:    "USD",
		Description: "two coffees",
		Status:      models.StatusActive,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(15 * time.Minute),
	}
}

func cancelSuperseded(now time.Time) func(prev *models.PaymentOrder) bool {
	return func(prev *models.PaymentOrder) bool {
		if !prev.Live() {
			return false
		}
		prev.Status = models.StatusCancelled
		prev.CancelledAt = &now
		prev.CancelReason = models.CancelReasonSuperseded
		return true
	}
}

func TestCreateForPosInsertsAndIndexes(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	created, superseded := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})
	require.Nil(t, superseded)

	got, err := store.GetByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	current, ok := store.CurrentForPos("pos-1")
	require.True(t, ok)
	require.Equal(t, created.ID, current.ID)
}

func TestCreateForPosSupersedesLiveOrder(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	first, _ := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})
	second, superseded := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})

	require.NotNil(t, superseded)
	require.Equal(t, first.ID, superseded.ID)
	require.Equal(t, models.StatusCancelled, superseded.Status)
	require.Equal(t, models.CancelReasonSuperseded, superseded.CancelReason)
	require.NotNil(t, superseded.CancelledAt)

	stored, err := store.GetByID(first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, stored.Status)

	current, ok := store.CurrentForPos("pos-1")
	require.True(t, ok)
	require.Equal(t, second.ID, current.ID)
}

func TestCreateForPosDoesNotCancelTerminalOrder(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	first, _ := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})
	_, err := store.Update(first.ID, func(o *models.PaymentOrder) error {
		o.Status = models.StatusCompleted
		return nil
	})
	require.NoError(t, err)

	_, superseded := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})
	require.Nil(t, superseded)

	stored, err := store.GetByID(first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, stored.Status)
}

func TestUpdateNotFound(t *testing.T) {
	store := NewOrderStore()

	_, err := store.Update(uuid.New(), func(o *models.PaymentOrder) error { return nil })
	require.ErrorIs(t, err, ErrOrderNotFound)

	_, err = store.GetByID(uuid.New())
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateLeavingLiveStatusClearsIndex(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	created, _ := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})

	_, err := store.Update(created.ID, func(o *models.PaymentOrder) error {
		o.Status = models.StatusExpired
		return nil
	})
	require.NoError(t, err)

	_, ok := store.CurrentForPos("pos-1")
	require.False(t, ok)
	require.Empty(t, store.Live())
}

func TestUpdateErrorLeavesOrderUntouchedInIndex(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	created, _ := store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
		return newTestOrder("pos-1", now)
	})

	wantErr := ErrOrderNotFound // any sentinel will do for fn propagation
	_, err := store.Update(created.ID, func(o *models.PaymentOrder) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	current, ok := store.CurrentForPos("pos-1")
	require.True(t, ok)
	require.Equal(t, created.ID, current.ID)
}

func TestConcurrentCreatesOnSameTerminal(t *testing.T) {
	store := NewOrderStore()
	now := time.Now().UTC()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			store.CreateForPos("pos-1", cancelSuperseded(now), func() models.PaymentOrder {
				return newTestOrder("pos-1", now)
			})
		}()
	}
	wg.Wait()

	// Exactly one order survives live; everything else was superseded.
	live := store.Live()
	require.Len(t, live, 1)

	all := store.ForPos("pos-1")
	require.Len(t, all, n)
	for _, o := range all {
		if o.ID == live[0].ID {
			require.Equal(t, models.StatusActive, o.Status)
			continue
		}
		require.Equal(t, models.StatusCancelled, o.Status)
		require.Equal(t, models.CancelReasonSuperseded, o.CancelReason)
	}

	current, ok := store.CurrentForPos("pos-1")
	require.True(t, ok)
	require.Equal(t, live[0].ID, current.ID)
}

func TestForPosNewestFirst(t *testing.T) {
	store := NewOrderStore()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		store.CreateForPos("pos-1", cancelSuperseded(createdAt), func() models.PaymentOrder {
			return newTestOrder("pos-1", createdAt)
		})
	}

	orders := store.ForPos("pos-1")
	require.Len(t, orders, 3)
	require.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
	require.True(t, orders[1].CreatedAt.After(orders[2].CreatedAt))
}
