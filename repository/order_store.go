package repository

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zeppex/mvp-sub001/models"
)

// ErrOrderNotFound is returned for lookups and transitions on unknown ids.
var ErrOrderNotFound = errors.New("order not found")

// orderEntry pairs an order with the lock that serializes its transitions.
type orderEntry struct {
	mu    sync.Mutex
	order models.PaymentOrder
}

// OrderStore is the in-memory home of all payment orders: a map keyed by
// order id plus a posID -> current live order index. The index only ever
// points at an order inserted through CreateForPos, and is dropped as soon
// as that order leaves a live status.
//
// Lock ordering: a per-POS lock (CreateForPos only), then the entry lock,
// then the store lock. The store lock is never held while acquiring an
// entry lock.
type OrderStore struct {
	mu      sync.RWMutex
	orders  map[uuid.UUID]*orderEntry
	current map[string]uuid.UUID

	posMu sync.Mutex
	pos   map[string]*sync.Mutex
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:  make(map[uuid.UUID]*orderEntry),
		current: make(map[string]uuid.UUID),
		pos:     make(map[string]*sync.Mutex),
	}
}

// posLock returns the mutex serializing creates for one terminal.
func (s *OrderStore) posLock(posID string) *sync.Mutex {
	s.posMu.Lock()
	defer s.posMu.Unlock()

	l, ok := s.pos[posID]
	if !ok {
		l = &sync.Mutex{}
		s.pos[posID] = l
	}
	return l
}

// CreateForPos atomically supersedes the terminal's current order and inserts
// a new one. cancelPrev runs under the previous order's lock and must return
// true only if it transitioned the order out of a live status; the superseded
// copy is then returned alongside the created order. Concurrent creates on
// the same terminal serialize, so exactly one order ends up current.
func (s *OrderStore) CreateForPos(
	posID string,
	cancelPrev func(prev *models.PaymentOrder) bool,
	build func() models.PaymentOrder,
) (models.PaymentOrder, *models.PaymentOrder) {
	lock := s.posLock(posID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	var prevEntry *orderEntry
	if id, ok := s.current[posID]; ok {
		prevEntry = s.orders[id]
	}
	s.mu.RUnlock()

	var superseded *models.PaymentOrder
	if prevEntry != nil {
		prevEntry.mu.Lock()
		if cancelPrev(&prevEntry.order) {
			cp := prevEntry.order
			superseded = &cp
		}
		prevEntry.mu.Unlock()
	}

	created := build()
	entry := &orderEntry{order: created}

	s.mu.Lock()
	s.orders[created.ID] = entry
	if created.Live() {
		s.current[posID] = created.ID
	} else {
		delete(s.current, posID)
	}
	s.mu.Unlock()

	return created, superseded
}

// Update runs fn under the order's lock. When fn succeeds and the order left
// a live status, the terminal index entry pointing at it is removed in the
// same critical section, so no reader can find a non-live current order. The
// returned copy reflects the order after fn ran, even when fn errored.
func (s *OrderStore) Update(id uuid.UUID, fn func(o *models.PaymentOrder) error) (models.PaymentOrder, error) {
	s.mu.RLock()
	entry, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return models.PaymentOrder{}, ErrOrderNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	wasLive := entry.order.Live()
	err := fn(&entry.order)
	cp := entry.order

	if err == nil && wasLive && !cp.Live() {
		s.mu.Lock()
		if cur, ok := s.current[cp.PosID]; ok && cur == id {
			delete(s.current, cp.PosID)
		}
		s.mu.Unlock()
	}

	return cp, err
}

// GetByID returns a copy of the order, or ErrOrderNotFound.
func (s *OrderStore) GetByID(id uuid.UUID) (models.PaymentOrder, error) {
	s.mu.RLock()
	entry, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return models.PaymentOrder{}, ErrOrderNotFound
	}

	entry.mu.Lock()
	cp := entry.order
	entry.mu.Unlock()
	return cp, nil
}

// CurrentForPos returns the terminal's current order if it is still live.
// An index entry whose order has already left a live status is never
// surfaced; expiry of an overdue ACTIVE order is the engine's job and is
// applied by the query service before this result reaches a caller.
func (s *OrderStore) CurrentForPos(posID string) (models.PaymentOrder, bool) {
	s.mu.RLock()
	id, ok := s.current[posID]
	var entry *orderEntry
	if ok {
		entry = s.orders[id]
	}
	s.mu.RUnlock()
	if entry == nil {
		return models.PaymentOrder{}, false
	}

	entry.mu.Lock()
	cp := entry.order
	entry.mu.Unlock()

	if !cp.Live() {
		return models.PaymentOrder{}, false
	}
	return cp, true
}

// Live returns copies of every order currently in a live status.
func (s *OrderStore) Live() []models.PaymentOrder {
	entries := s.snapshotEntries()

	var out []models.PaymentOrder
	for _, entry := range entries {
		entry.mu.Lock()
		cp := entry.order
		entry.mu.Unlock()
		if cp.Live() {
			out = append(out, cp)
		}
	}
	return out
}

// ForPos returns every order ever created for the terminal, newest first.
func (s *OrderStore) ForPos(posID string) []models.PaymentOrder {
	entries := s.snapshotEntries()

	var out []models.PaymentOrder
	for _, entry := range entries {
		entry.mu.Lock()
		cp := entry.order
		entry.mu.Unlock()
		if cp.PosID == posID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *OrderStore) snapshotEntries() []*orderEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*orderEntry, 0, len(s.orders))
	for _, e := range s.orders {
		entries = append(entries, e)
	}
	return entries
}
