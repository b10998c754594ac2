// Package fhe is the boundary to the homomorphic-encryption collaborator.
// The scheme itself is external; this package only carries its contract:
// opaque ciphertext handles, input proofs at encryption time, and signed
// decryption attestations that bind a cleartext to exactly one handle.
package fhe

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Ciphertext pairs a fresh handle with the proof of its well-formedness.
type Ciphertext struct {
	Handle     common.Hash   `json:"handle"`
	InputProof hexutil.Bytes `json:"inputProof"`
}

// Decryption is the collaborator's answer to a decryption request: cleartext
// values and one attestation per handle. Per-handle proofs let the ledger
// bind each proof strictly to its own handle instead of accepting an
// aggregate that any handle in the set could claim.
type Decryption struct {
	Values map[common.Hash]uint64        `json:"values"`
	Proofs map[common.Hash]hexutil.Bytes `json:"proofs"`
}

// Engine is the consumed FHE collaborator interface.
type Engine interface {
	// Encrypt produces a ciphertext handle for plaintext, owned by owner,
	// plus a proof of well-formedness.
	Encrypt(ctx context.Context, owner common.Address, plaintext uint64) (Ciphertext, error)

	// RequestDecryption returns cleartext values and attestations for the
	// given handles. The call blocks for the collaborator round trip; once
	// issued it runs to completion even if the caller abandons the context.
	RequestDecryption(ctx context.Context, handles []common.Hash) (*Decryption, error)
}
