// Package coordinator orchestrates the reveal flow: fetch the order, request
// decryption-with-proof from the FHE collaborator, and commit the proven
// cleartexts back to the ledger.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloakbook/cloakbook/pkg/fhe"
	"github.com/cloakbook/cloakbook/pkg/ledger"
)

// Ledger is the slice of the order ledger the coordinator drives.
type Ledger interface {
	GetOrder(id string) (*ledger.TradeOrder, error)
	Verify(id string, amount int64, amountProof []byte, price int64, priceProof []byte) error
}

// Coordinator runs one verification at a time per call; it keeps no state of
// its own, so a caller can abandon a call and simply issue another.
type Coordinator struct {
	ledger Ledger
	engine fhe.Engine
	log    *zap.SugaredLogger
}

// New creates a coordinator over the given ledger and FHE engine.
func New(l Ledger, engine fhe.Engine, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{ledger: l, engine: engine, log: log}
}

// RequestVerification reveals the order's encrypted amount. Idempotent: an
// already-verified order returns its stored cleartext without a collaborator
// round trip, and a verify that loses a race to another party is treated as
// success with the winner's value. Every other failure surfaces unchanged;
// decryption requests are not blindly retried here.
func (c *Coordinator) RequestVerification(ctx context.Context, id string) (int64, error) {
	order, err := c.ledger.GetOrder(id)
	if err != nil {
		return 0, err
	}

	// Fast path: nothing to do, no engine call.
	if order.IsVerified() {
		return order.DecryptedAmount, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	reqID := uuid.NewString()
	handles := []common.Hash{order.EncAmount, order.EncPrice}
	c.log.Infow("decryption_requested", "order", id, "request", reqID)

	dec, err := c.engine.RequestDecryption(ctx, handles)
	if err != nil {
		return 0, fmt.Errorf("decryption request %s: %w", reqID, err)
	}

	amount, ok := dec.Values[order.EncAmount]
	if !ok {
		return 0, fmt.Errorf("decryption request %s: no value for amount handle", reqID)
	}
	price, ok := dec.Values[order.EncPrice]
	if !ok {
		return 0, fmt.Errorf("decryption request %s: no value for price handle", reqID)
	}

	err = c.ledger.Verify(id, int64(amount), dec.Proofs[order.EncAmount], int64(price), dec.Proofs[order.EncPrice])
	if errors.Is(err, ledger.ErrAlreadyVerified) {
		// Another party committed first. Benign race: the on-record value is
		// the authoritative one, re-read and return it.
		c.log.Infow("verification_race_recovered", "order", id, "request", reqID)
		committed, rerr := c.ledger.GetOrder(id)
		if rerr != nil {
			return 0, rerr
		}
		return committed.DecryptedAmount, nil
	}
	if err != nil {
		return 0, err
	}

	c.log.Infow("verification_committed", "order", id, "request", reqID, "amount", amount, "price", price)
	return int64(amount), nil
}
