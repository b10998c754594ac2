package fhe

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/cloakbook/cloakbook/pkg/crypto"
)

// LocalEngine is an in-process collaborator for dev mode and tests. The
// "encryption" is a keccak commitment over owner, a per-engine nonce, and the
// plaintext; confidentiality holds only against parties without access to
// this process. The proof math is real: input proofs and decryption
// attestations are secp256k1 signatures by the engine's oracle key, checked
// by the same Verifier the ledger uses against a remote gateway.
type LocalEngine struct {
	oracle   *crypto.Signer
	att      *crypto.AttestationSigner
	verifier *Verifier

	mu         sync.Mutex
	plaintexts map[common.Hash]uint64 // handle -> stored plaintext
	nonce      uint64
}

// NewLocalEngine creates a local engine signing with the given oracle key.
func NewLocalEngine(domain crypto.Domain, oracle *crypto.Signer) *LocalEngine {
	return &LocalEngine{
		oracle:     oracle,
		att:        crypto.NewAttestationSigner(domain),
		verifier:   NewVerifier(domain, oracle.Address()),
		plaintexts: make(map[common.Hash]uint64),
	}
}

// Verifier returns the signature checker trusting this engine's oracle key.
func (e *LocalEngine) Verifier() *Verifier {
	return e.verifier
}

// Encrypt commits to plaintext under a fresh handle and signs its input
// proof. Distinct calls with equal plaintexts yield distinct handles.
func (e *LocalEngine) Encrypt(ctx context.Context, owner common.Address, plaintext uint64) (Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return Ciphertext{}, err
	}

	e.mu.Lock()
	e.nonce++
	nonce := e.nonce
	e.mu.Unlock()

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], nonce)
	binary.BigEndian.PutUint64(buf[8:], plaintext)
	handle := ethcrypto.Keccak256Hash(owner.Bytes(), buf[:])

	proof, err := e.att.SignInputCiphertext(e.oracle, handle, owner)
	if err != nil {
		return Ciphertext{}, fmt.Errorf("sign input proof: %w", err)
	}

	e.mu.Lock()
	e.plaintexts[handle] = plaintext
	e.mu.Unlock()

	return Ciphertext{Handle: handle, InputProof: proof}, nil
}

// RequestDecryption returns the stored plaintexts with one attestation per
// handle. Unknown handles fail the whole request.
func (e *LocalEngine) RequestDecryption(ctx context.Context, handles []common.Hash) (*Decryption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec := &Decryption{
		Values: make(map[common.Hash]uint64, len(handles)),
		Proofs: make(map[common.Hash]hexutil.Bytes, len(handles)),
	}

	for _, h := range handles {
		e.mu.Lock()
		value, ok := e.plaintexts[h]
		e.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("unknown ciphertext handle %s", h.Hex())
		}

		proof, err := e.att.SignDecryption(e.oracle, h, value)
		if err != nil {
			return nil, fmt.Errorf("sign attestation for %s: %w", h.Hex(), err)
		}
		dec.Values[h] = value
		dec.Proofs[h] = proof
	}

	return dec, nil
}

var _ Engine = (*LocalEngine)(nil)
