package fhe

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cloakbook/cloakbook/pkg/crypto"
)

// Verifier implements the collaborator's signature-check contract locally:
// proofs are secp256k1 signatures by a known oracle over EIP-712 digests, so
// checking them needs no network round trip, only the oracle address.
type Verifier struct {
	att    *crypto.AttestationSigner
	oracle common.Address
}

// NewVerifier creates a verifier trusting the given oracle address.
func NewVerifier(domain crypto.Domain, oracle common.Address) *Verifier {
	return &Verifier{
		att:    crypto.NewAttestationSigner(domain),
		oracle: oracle,
	}
}

// Oracle returns the trusted attestation signer address.
func (v *Verifier) Oracle() common.Address {
	return v.oracle
}

// CheckCiphertext validates that handle is a well-formed ciphertext created
// by owner, attested by inputProof.
func (v *Verifier) CheckCiphertext(handle common.Hash, inputProof []byte, owner common.Address) error {
	ok, err := v.att.VerifyInputCiphertext(v.oracle, handle, owner, inputProof)
	if err != nil {
		return fmt.Errorf("input proof check: %w", err)
	}
	if !ok {
		return fmt.Errorf("input proof does not attest handle %s for %s", handle.Hex(), owner.Hex())
	}
	return nil
}

// CheckSignature validates that clearValue is the genuine decryption of
// handle, authenticated by proof. An attestation minted for any other handle
// fails here.
func (v *Verifier) CheckSignature(handle common.Hash, clearValue uint64, proof []byte) error {
	ok, err := v.att.VerifyDecryption(v.oracle, handle, clearValue, proof)
	if err != nil {
		return fmt.Errorf("attestation check: %w", err)
	}
	if !ok {
		return fmt.Errorf("attestation does not bind %d to handle %s", clearValue, handle.Hex())
	}
	return nil
}

// CheckSignatures validates a whole decryption result, one attestation per
// handle.
func (v *Verifier) CheckSignatures(handles []common.Hash, dec *Decryption) error {
	for _, h := range handles {
		value, ok := dec.Values[h]
		if !ok {
			return fmt.Errorf("missing clear value for handle %s", h.Hex())
		}
		proof, ok := dec.Proofs[h]
		if !ok {
			return fmt.Errorf("missing attestation for handle %s", h.Hex())
		}
		if err := v.CheckSignature(h, value, proof); err != nil {
			return err
		}
	}
	return nil
}
