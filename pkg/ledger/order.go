package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Handle is an opaque reference to a ciphertext held by the FHE collaborator.
// It is meaningless without the corresponding decryption capability.
type Handle = common.Hash

// OrderStatus represents the lifecycle state of a trade order
type OrderStatus int8

const (
	OrderCreated OrderStatus = iota
	// OrderDecryptionPending is reserved for a future async gateway flow where
	// the decryption request and the proof commit happen in separate rounds.
	OrderDecryptionPending
	OrderVerified
)

func (s OrderStatus) String() string {
	switch s {
	case OrderCreated:
		return "created"
	case OrderDecryptionPending:
		return "decryption_pending"
	case OrderVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// TradeOrder is a confidential trade record. Public fields (name, asset type,
// price) are readable by anyone from creation; the amount stays behind its
// ciphertext handle until the owner reveals it through the decryption/proof
// workflow.
type TradeOrder struct {
	ID        string         `json:"id"`     // caller-assigned, unique for the ledger lifetime
	Name      string         `json:"name"`
	AssetType string         `json:"assetType"`
	Creator   common.Address `json:"creator"`
	CreatedAt int64          `json:"createdAt"` // Unix milliseconds, set by the ledger

	// Ciphertext handles, set exactly once at creation
	EncAmount Handle `json:"encAmount"`
	EncPrice  Handle `json:"encPrice"`

	// Public plaintext fields
	PublicPrice int64 `json:"publicPrice"`

	// Verification state. DecryptedAmount/DecryptedPrice are only meaningful
	// once Status == OrderVerified.
	Status          OrderStatus `json:"status"`
	DecryptedAmount int64       `json:"decryptedAmount"`
	DecryptedPrice  int64       `json:"decryptedPrice"`
}

// IsVerified returns true once the order's cleartexts have been proven and
// committed.
func (o *TradeOrder) IsVerified() bool {
	return o.Status == OrderVerified
}

// Clone returns a copy so readers never alias ledger-owned state.
func (o *TradeOrder) Clone() *TradeOrder {
	cp := *o
	return &cp
}

// CreateParams carries everything the creator supplies for a new order.
// Handles arrive with input proofs; the ledger checks both against the FHE
// collaborator before accepting.
type CreateParams struct {
	ID          string
	Name        string
	AssetType   string
	Creator     common.Address
	PublicPrice int64

	EncAmount        Handle
	AmountInputProof []byte
	EncPrice         Handle
	PriceInputProof  []byte
}

// Validate checks structural requirements before any store or collaborator
// round trip.
func (p *CreateParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("missing order id")
	}
	if p.Creator == (common.Address{}) {
		return fmt.Errorf("missing creator address")
	}
	if p.EncAmount == (Handle{}) {
		return fmt.Errorf("missing encrypted amount handle")
	}
	if p.EncPrice == (Handle{}) {
		return fmt.Errorf("missing encrypted price handle")
	}
	if len(p.AmountInputProof) == 0 || len(p.PriceInputProof) == 0 {
		return fmt.Errorf("missing input proof")
	}
	return nil
}
