package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/cloakbook/cloakbook/pkg/util"
)

// Store is the durable key-value substrate the ledger owns its orders
// through. Implementations must make Insert and CompareAndVerify atomic with
// respect to each other per id: at most one verify can ever flip an order.
type Store interface {
	// Get returns the stored order, or ok=false if the id is unknown.
	Get(id string) (*TradeOrder, bool, error)

	// Insert writes a new order and appends its id to the insertion-order
	// index. Returns ErrDuplicateOrder if the id is already present.
	Insert(o *TradeOrder) error

	// CompareAndVerify flips the order to OrderVerified and records the
	// cleartexts, iff the order exists and is not yet verified. Returns
	// ErrOrderNotFound or ErrAlreadyVerified otherwise.
	CompareAndVerify(id string, amount, price int64) error

	// ListIDs returns all known ids in insertion order.
	ListIDs() ([]string, error)

	// Available reports whether the substrate is reachable.
	Available() bool

	Close() error
}

// ProofChecker is the slice of the FHE collaborator the ledger consumes:
// ciphertext well-formedness at creation, decryption attestations at verify.
type ProofChecker interface {
	// CheckCiphertext validates that handle is a well-formed ciphertext owned
	// by owner, attested by inputProof.
	CheckCiphertext(handle Handle, inputProof []byte, owner common.Address) error

	// CheckSignature validates that clearValue is the genuine decryption of
	// handle, authenticated by proof. The check binds to this one handle: an
	// attestation for a different handle must fail.
	CheckSignature(handle Handle, clearValue uint64, proof []byte) error
}

// Ledger owns the authoritative state of every trade order. All mutation goes
// through CreateOrder and Verify; everything else is read-only, which makes
// the single write lock sufficient for the per-id atomicity the verify
// transition needs.
type Ledger struct {
	store  Store
	proofs ProofChecker
	clock  util.Clock
	log    *zap.SugaredLogger

	mu    sync.Mutex // serializes Insert and CompareAndVerify
	sinks []Sink
}

// New creates a ledger over the given store and proof checker.
func New(store Store, proofs ProofChecker, log *zap.SugaredLogger) *Ledger {
	return &Ledger{
		store:  store,
		proofs: proofs,
		clock:  util.RealClock{},
		log:    log,
	}
}

// WithClock substitutes the time source. Used by tests.
func (l *Ledger) WithClock(c util.Clock) *Ledger {
	l.clock = c
	return l
}

// Subscribe registers a sink for post-commit events. Not safe to call
// concurrently with mutations; wire sinks at startup.
func (l *Ledger) Subscribe(s Sink) {
	l.sinks = append(l.sinks, s)
}

// CreateOrder validates the ciphertext handles, inserts the order, and emits
// OrderCreated. All-or-nothing: no partial order is ever visible to readers.
func (l *Ledger) CreateOrder(ctx context.Context, p CreateParams) (*TradeOrder, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("create %q: %w", p.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Duplicate pre-check before the collaborator round trip. The store
	// re-checks under Insert, so a racing creator still loses cleanly.
	if _, ok, err := l.store.Get(p.ID); err != nil {
		return nil, fmt.Errorf("create %q: read: %w", p.ID, err)
	} else if ok {
		return nil, fmt.Errorf("create %q: %w", p.ID, ErrDuplicateOrder)
	}

	if err := l.proofs.CheckCiphertext(p.EncAmount, p.AmountInputProof, p.Creator); err != nil {
		return nil, fmt.Errorf("create %q: amount handle: %w", p.ID, ErrInvalidCiphertext)
	}
	if err := l.proofs.CheckCiphertext(p.EncPrice, p.PriceInputProof, p.Creator); err != nil {
		return nil, fmt.Errorf("create %q: price handle: %w", p.ID, ErrInvalidCiphertext)
	}

	order := &TradeOrder{
		ID:          p.ID,
		Name:        p.Name,
		AssetType:   p.AssetType,
		Creator:     p.Creator,
		CreatedAt:   l.clock.Now().UnixMilli(),
		EncAmount:   p.EncAmount,
		EncPrice:    p.EncPrice,
		PublicPrice: p.PublicPrice,
		Status:      OrderCreated,
	}

	l.mu.Lock()
	err := l.store.Insert(order)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", p.ID, err)
	}

	l.log.Infow("order_created", "id", order.ID, "creator", order.Creator.Hex())
	for _, s := range l.sinks {
		s.OrderCreated(OrderCreatedEvent{ID: order.ID, Creator: order.Creator})
	}
	return order.Clone(), nil
}

// GetOrder returns the order for id. Pure read.
func (l *Ledger) GetOrder(id string) (*TradeOrder, error) {
	o, ok, err := l.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("get %q: %w", id, ErrOrderNotFound)
	}
	return o.Clone(), nil
}

// ListOrderIDs returns all known ids in creation order, reflecting ledger
// state at call time.
func (l *Ledger) ListOrderIDs() ([]string, error) {
	return l.store.ListIDs()
}

// Verify commits proven cleartexts for an order. Each proof is bound strictly
// to its own handle: the amount proof is checked against EncAmount only and
// the price proof against EncPrice only, so a cross-bound attestation is
// rejected. The not-verified check and the flip are one atomic step; of any
// number of concurrent verify calls on the same id, exactly one succeeds.
func (l *Ledger) Verify(id string, amount int64, amountProof []byte, price int64, priceProof []byte) error {
	order, ok, err := l.store.Get(id)
	if err != nil {
		return fmt.Errorf("verify %q: read: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("verify %q: %w", id, ErrOrderNotFound)
	}
	if order.IsVerified() {
		return fmt.Errorf("verify %q: %w", id, ErrAlreadyVerified)
	}

	if err := l.proofs.CheckSignature(order.EncAmount, uint64(amount), amountProof); err != nil {
		return fmt.Errorf("verify %q: amount: %w", id, ErrProofVerification)
	}
	if err := l.proofs.CheckSignature(order.EncPrice, uint64(price), priceProof); err != nil {
		return fmt.Errorf("verify %q: price: %w", id, ErrProofVerification)
	}

	// Proofs are valid; the store re-checks verified-ness under the lock so a
	// racing winner leaves this call with ErrAlreadyVerified and no mutation.
	l.mu.Lock()
	err = l.store.CompareAndVerify(id, amount, price)
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("verify %q: %w", id, err)
	}

	l.log.Infow("order_verified", "id", id, "amount", amount, "price", price)
	for _, s := range l.sinks {
		s.DecryptionVerified(DecryptionVerifiedEvent{ID: id, Amount: amount, Price: price})
	}
	return nil
}

// Available is a liveness probe with no side effects.
func (l *Ledger) Available() bool {
	return l.store.Available()
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
