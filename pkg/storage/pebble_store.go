package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/cloakbook/cloakbook/pkg/ledger"
)

// PebbleStore is the durable order ledger substrate. A single mutex
// serializes Insert and CompareAndVerify, which gives the compare-and-flip
// its atomicity; reads go straight to pebble.
type PebbleStore struct {
	mu sync.Mutex
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the store at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// Get returns the stored order, or ok=false for an unknown id.
func (s *PebbleStore) Get(id string) (*ledger.TradeOrder, bool, error) {
	val, closer, err := s.db.Get(orderKey(id))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get order: %w", err)
	}
	defer closer.Close()

	var o ledger.TradeOrder
	if err := json.Unmarshal(val, &o); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &o, true, nil
}

// Insert writes a new order and appends its id to the insertion index in one
// batch. Duplicate ids fail without touching state.
func (s *PebbleStore) Insert(o *ledger.TradeOrder) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, closer, err := s.db.Get(orderKey(o.ID)); err == nil {
		closer.Close()
		return ledger.ErrDuplicateOrder
	} else if err != pebble.ErrNotFound {
		return fmt.Errorf("failed to check order: %w", err)
	}

	seq, err := s.nextSeqLocked()
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(orderKey(o.ID), data, nil); err != nil {
		return fmt.Errorf("failed to stage order: %w", err)
	}
	if err := batch.Set(seqKey(seq), []byte(o.ID), nil); err != nil {
		return fmt.Errorf("failed to stage index: %w", err)
	}
	var next [8]byte
	binary.BigEndian.PutUint64(next[:], seq+1)
	if err := batch.Set(nextSeqKey(), next[:], nil); err != nil {
		return fmt.Errorf("failed to stage sequence: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// nextSeqLocked reads the next insertion sequence number. Caller holds mu.
func (s *PebbleStore) nextSeqLocked() (uint64, error) {
	val, closer, err := s.db.Get(nextSeqKey())
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	defer closer.Close()
	return binary.BigEndian.Uint64(val), nil
}

// CompareAndVerify flips the order to verified and writes the cleartexts, iff
// it is not verified yet. The read-check-write runs under the store mutex so
// of any number of racing calls exactly one wins.
func (s *PebbleStore) CompareAndVerify(id string, amount, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok, err := s.Get(id)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.ErrOrderNotFound
	}
	if o.IsVerified() {
		return ledger.ErrAlreadyVerified
	}

	o.Status = ledger.OrderVerified
	o.DecryptedAmount = amount
	o.DecryptedPrice = price

	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := s.db.Set(orderKey(id), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit verification: %w", err)
	}
	return nil
}

// ListIDs returns all order ids in insertion order.
func (s *PebbleStore) ListIDs() ([]string, error) {
	prefix := seqPrefix()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index iterator: %w", err)
	}
	defer iter.Close()

	var ids []string
	for iter.First(); iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Value()))
	}
	return ids, nil
}

// Available probes the store with a cheap point read.
func (s *PebbleStore) Available() bool {
	_, closer, err := s.db.Get(nextSeqKey())
	if err == pebble.ErrNotFound {
		return true
	}
	if err != nil {
		return false
	}
	closer.Close()
	return true
}

var _ ledger.Store = (*PebbleStore)(nil)
