package storage

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cloakbook/cloakbook/pkg/ledger"
)

func testOrder(id string) *ledger.TradeOrder {
	return &ledger.TradeOrder{
		ID:          id,
		Name:        "gold future",
		AssetType:   "commodity",
		Creator:     common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"),
		CreatedAt:   1700000000000,
		EncAmount:   common.HexToHash("0x01"),
		EncPrice:    common.HexToHash("0x02"),
		PublicPrice: 25,
		Status:      ledger.OrderCreated,
	}
}

func openStores(t *testing.T) map[string]ledger.Store {
	t.Helper()
	ps, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("open pebble store: %v", err)
	}
	t.Cleanup(func() { ps.Close() })
	return map[string]ledger.Store{
		"pebble": ps,
		"mem":    NewMemStore(),
	}
}

// Both implementations must honor the same contract.
func TestStoreInsertGet(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Get("A"); err != nil || ok {
				t.Fatalf("Get on empty store = (%v, %v)", ok, err)
			}

			if err := store.Insert(testOrder("A")); err != nil {
				t.Fatalf("insert: %v", err)
			}

			got, ok, err := store.Get("A")
			if err != nil || !ok {
				t.Fatalf("get after insert = (%v, %v)", ok, err)
			}
			if got.Name != "gold future" || got.PublicPrice != 25 {
				t.Errorf("round-tripped order mismatch: %+v", got)
			}
			if got.IsVerified() {
				t.Error("fresh order must not be verified")
			}

			if err := store.Insert(testOrder("A")); !errors.Is(err, ledger.ErrDuplicateOrder) {
				t.Errorf("duplicate insert = %v, want ErrDuplicateOrder", err)
			}
		})
	}
}

func TestStoreListIDsInsertionOrder(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"c", "a", "b"} {
				if err := store.Insert(testOrder(id)); err != nil {
					t.Fatalf("insert %s: %v", id, err)
				}
			}
			ids, err := store.ListIDs()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			want := []string{"c", "a", "b"}
			if len(ids) != len(want) {
				t.Fatalf("got %d ids, want %d", len(ids), len(want))
			}
			for i := range want {
				if ids[i] != want[i] {
					t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
				}
			}
		})
	}
}

func TestStoreCompareAndVerify(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.CompareAndVerify("missing", 1, 2); !errors.Is(err, ledger.ErrOrderNotFound) {
				t.Errorf("verify missing = %v, want ErrOrderNotFound", err)
			}

			if err := store.Insert(testOrder("A")); err != nil {
				t.Fatalf("insert: %v", err)
			}

			if err := store.CompareAndVerify("A", 100, 25); err != nil {
				t.Fatalf("first verify: %v", err)
			}
			got, _, _ := store.Get("A")
			if !got.IsVerified() || got.DecryptedAmount != 100 || got.DecryptedPrice != 25 {
				t.Errorf("verified order state = %+v", got)
			}

			// second flip must fail and leave state intact
			if err := store.CompareAndVerify("A", 999, 999); !errors.Is(err, ledger.ErrAlreadyVerified) {
				t.Errorf("second verify = %v, want ErrAlreadyVerified", err)
			}
			got, _, _ = store.Get("A")
			if got.DecryptedAmount != 100 {
				t.Errorf("losing verify mutated state: amount = %d", got.DecryptedAmount)
			}
		})
	}
}

func TestPebbleStorePersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Insert(testOrder("A")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.CompareAndVerify("A", 100, 25); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get("A")
	if err != nil || !ok {
		t.Fatalf("get after reopen = (%v, %v)", ok, err)
	}
	if !got.IsVerified() || got.DecryptedAmount != 100 {
		t.Errorf("state lost across reopen: %+v", got)
	}

	ids, _ := reopened.ListIDs()
	if len(ids) != 1 || ids[0] != "A" {
		t.Errorf("index lost across reopen: %v", ids)
	}

	if !reopened.Available() {
		t.Error("reopened store should be available")
	}
}
