package storage

import (
	"sync"

	"github.com/cloakbook/cloakbook/pkg/ledger"
)

// MemStore is an in-memory ledger.Store for tests and throwaway dev runs.
// Same atomicity contract as PebbleStore, nothing survives a restart.
type MemStore struct {
	mu     sync.Mutex
	orders map[string]*ledger.TradeOrder
	index  []string
}

func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[string]*ledger.TradeOrder)}
}

func (s *MemStore) Get(id string) (*ledger.TradeOrder, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false, nil
	}
	return o.Clone(), true, nil
}

func (s *MemStore) Insert(o *ledger.TradeOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return ledger.ErrDuplicateOrder
	}
	s.orders[o.ID] = o.Clone()
	s.index = append(s.index, o.ID)
	return nil
}

func (s *MemStore) CompareAndVerify(id string, amount, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ledger.ErrOrderNotFound
	}
	if o.IsVerified() {
		return ledger.ErrAlreadyVerified
	}
	o.Status = ledger.OrderVerified
	o.DecryptedAmount = amount
	o.DecryptedPrice = price
	return nil
}

func (s *MemStore) ListIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.index))
	copy(ids, s.index)
	return ids, nil
}

func (s *MemStore) Available() bool { return true }

func (s *MemStore) Close() error { return nil }

var _ ledger.Store = (*MemStore)(nil)
