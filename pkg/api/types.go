package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cloakbook/cloakbook/pkg/ledger"
)

// API request/response types for REST endpoints and WebSocket messages

// ==============================
// REST Types
// ==============================

// CreateOrderRequest is the payload for POST /api/v1/orders. Handles and
// proofs come from client-side encryption; the dashboard obtains them from
// the FHE gateway before submitting.
type CreateOrderRequest struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AssetType   string         `json:"assetType"`
	Creator     common.Address `json:"creator"`
	PublicPrice int64          `json:"publicPrice"`

	EncAmount        common.Hash   `json:"encAmount"`
	AmountInputProof hexutil.Bytes `json:"amountInputProof"`
	EncPrice         common.Hash   `json:"encPrice"`
	PriceInputProof  hexutil.Bytes `json:"priceInputProof"`
}

// OrderInfo is the readable view of a trade order. Decrypted fields are only
// populated once the order is verified.
type OrderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AssetType   string `json:"assetType"`
	Creator     string `json:"creator"`
	CreatedAt   int64  `json:"createdAt"` // Unix milliseconds
	PublicPrice int64  `json:"publicPrice"`
	EncAmount   string `json:"encAmount"`
	EncPrice    string `json:"encPrice"`
	Status      string `json:"status"`
	IsVerified  bool   `json:"isVerified"`

	DecryptedAmount *int64 `json:"decryptedAmount,omitempty"`
	DecryptedPrice  *int64 `json:"decryptedPrice,omitempty"`
}

// VerifyResponse is returned from POST /api/v1/orders/{id}/verify.
type VerifyResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Price  int64  `json:"price"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func orderInfo(o *ledger.TradeOrder) OrderInfo {
	info := OrderInfo{
		ID:          o.ID,
		Name:        o.Name,
		AssetType:   o.AssetType,
		Creator:     o.Creator.Hex(),
		CreatedAt:   o.CreatedAt,
		PublicPrice: o.PublicPrice,
		EncAmount:   o.EncAmount.Hex(),
		EncPrice:    o.EncPrice.Hex(),
		Status:      o.Status.String(),
		IsVerified:  o.IsVerified(),
	}
	if o.IsVerified() {
		amount, price := o.DecryptedAmount, o.DecryptedPrice
		info.DecryptedAmount = &amount
		info.DecryptedPrice = &price
	}
	return info
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by clients to manage channel subscriptions,
// e.g. ["orders", "order:A"].
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// OrderCreatedMessage is broadcast when a creation commits.
type OrderCreatedMessage struct {
	Type    string `json:"type"` // "order_created"
	ID      string `json:"id"`
	Creator string `json:"creator"`
}

// DecryptionVerifiedMessage is broadcast when an order's cleartexts are
// proven and committed.
type DecryptionVerifiedMessage struct {
	Type   string `json:"type"` // "decryption_verified"
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Price  int64  `json:"price"`
}
