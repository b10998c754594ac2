package fhe

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cloakbook/cloakbook/pkg/crypto"
)

func newTestEngine(t *testing.T) *LocalEngine {
	t.Helper()
	oracle, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate oracle key: %v", err)
	}
	return NewLocalEngine(crypto.DefaultDomain(1337), oracle)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0")

	ct, err := eng.Encrypt(ctx, owner, 100)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if ct.Handle == (common.Hash{}) {
		t.Fatal("zero handle")
	}

	// fresh handle per call even for equal plaintexts
	ct2, err := eng.Encrypt(ctx, owner, 100)
	if err != nil {
		t.Fatalf("second encrypt: %v", err)
	}
	if ct2.Handle == ct.Handle {
		t.Error("expected distinct handles for repeated plaintext")
	}

	dec, err := eng.RequestDecryption(ctx, []common.Hash{ct.Handle})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got := dec.Values[ct.Handle]; got != 100 {
		t.Errorf("decrypted value = %d, want 100", got)
	}

	if err := eng.Verifier().CheckSignatures([]common.Hash{ct.Handle}, dec); err != nil {
		t.Errorf("attestations should verify: %v", err)
	}
}

func TestCheckCiphertext(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0")

	ct, err := eng.Encrypt(ctx, owner, 42)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	v := eng.Verifier()
	if err := v.CheckCiphertext(ct.Handle, ct.InputProof, owner); err != nil {
		t.Errorf("input proof should check out: %v", err)
	}

	other := common.HexToAddress("0x0000000000000000000000000000000000000009")
	if err := v.CheckCiphertext(ct.Handle, ct.InputProof, other); err == nil {
		t.Error("input proof should not validate for another owner")
	}

	// proof from a different oracle is rejected
	strangerEng := newTestEngine(t)
	foreign, err := strangerEng.Encrypt(ctx, owner, 42)
	if err != nil {
		t.Fatalf("foreign encrypt: %v", err)
	}
	if err := v.CheckCiphertext(foreign.Handle, foreign.InputProof, owner); err == nil {
		t.Error("foreign oracle proof should be rejected")
	}
}

func TestDecryptionProofHandleBinding(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0")

	amount, _ := eng.Encrypt(ctx, owner, 100)
	price, _ := eng.Encrypt(ctx, owner, 25)

	dec, err := eng.RequestDecryption(ctx, []common.Hash{amount.Handle, price.Handle})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	v := eng.Verifier()

	// each attestation binds to its own handle only
	if err := v.CheckSignature(amount.Handle, 100, dec.Proofs[amount.Handle]); err != nil {
		t.Errorf("amount attestation should verify: %v", err)
	}
	if err := v.CheckSignature(price.Handle, 100, dec.Proofs[amount.Handle]); err == nil {
		t.Error("amount attestation must not verify against the price handle")
	}
	if err := v.CheckSignature(amount.Handle, 25, dec.Proofs[price.Handle]); err == nil {
		t.Error("price attestation must not verify against the amount handle")
	}
}

func TestRequestDecryptionUnknownHandle(t *testing.T) {
	eng := newTestEngine(t)

	unknown := common.HexToHash("0xdeadbeef")
	if _, err := eng.RequestDecryption(context.Background(), []common.Hash{unknown}); err == nil {
		t.Error("expected error for unknown handle")
	}
}
