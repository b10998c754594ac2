package ledger

import "github.com/ethereum/go-ethereum/common"

// Events are emitted after a successful commit, never from inside the
// mutation path. Observers (the WebSocket hub, loggers) register a Sink on
// the ledger.

// OrderCreatedEvent is emitted once per accepted creation.
type OrderCreatedEvent struct {
	ID      string         `json:"id"`
	Creator common.Address `json:"creator"`
}

// DecryptionVerifiedEvent is emitted once per order, when the winning verify
// commits.
type DecryptionVerifiedEvent struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Price  int64  `json:"price"`
}

// Sink receives ledger events. Implementations must not block: delivery runs
// on the mutating goroutine after the commit.
type Sink interface {
	OrderCreated(ev OrderCreatedEvent)
	DecryptionVerified(ev DecryptionVerifiedEvent)
}

// SinkFuncs adapts plain functions to a Sink. Nil fields are skipped.
type SinkFuncs struct {
	OnOrderCreated       func(OrderCreatedEvent)
	OnDecryptionVerified func(DecryptionVerifiedEvent)
}

func (s SinkFuncs) OrderCreated(ev OrderCreatedEvent) {
	if s.OnOrderCreated != nil {
		s.OnOrderCreated(ev)
	}
}

func (s SinkFuncs) DecryptionVerified(ev DecryptionVerifiedEvent) {
	if s.OnDecryptionVerified != nil {
		s.OnDecryptionVerified(ev)
	}
}
