package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Domain is the EIP-712 domain separator for attestation signing. It scopes
// attestations to one deployment so a proof minted for another chain or
// contract cannot be replayed here.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// DefaultDomain returns the attestation domain for the given chain.
func DefaultDomain(chainID int64) Domain {
	return Domain{
		Name:              "CloakBook",
		Version:           "1",
		ChainID:           big.NewInt(chainID),
		VerifyingContract: common.Address{}, // zero address for off-chain attestation
	}
}

// AttestationSigner hashes and verifies the two typed-data structures the FHE
// collaborator's signature contract is built on:
//
//   InputCiphertext(handle, owner)        for well-formedness of a fresh handle
//   DecryptionAttestation(handle, value)  for a cleartext bound to one handle
//
// Binding the handle into the signed struct is what stops a caller from
// replaying an amount attestation against the price handle.
type AttestationSigner struct {
	domain Domain
}

// NewAttestationSigner creates an attestation signer with the given domain.
func NewAttestationSigner(domain Domain) *AttestationSigner {
	return &AttestationSigner{domain: domain}
}

var domainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

func (a *AttestationSigner) hash(primaryType string, types []apitypes.Type, message apitypes.TypedDataMessage) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainType,
			primaryType:    types,
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              a.domain.Name,
			Version:           a.domain.Version,
			ChainId:           (*math.HexOrDecimal256)(a.domain.ChainID),
			VerifyingContract: a.domain.VerifyingContract.Hex(),
		},
		Message: message,
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}
	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	// Final digest: keccak256("\x19\x01" || domainSeparator || typedDataHash)
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256Hash(rawData).Bytes(), nil
}

// HashInputCiphertext returns the digest attesting that handle is a
// well-formed ciphertext created by owner.
func (a *AttestationSigner) HashInputCiphertext(handle common.Hash, owner common.Address) ([]byte, error) {
	return a.hash("InputCiphertext",
		[]apitypes.Type{
			{Name: "handle", Type: "bytes32"},
			{Name: "owner", Type: "address"},
		},
		apitypes.TypedDataMessage{
			"handle": handle.Hex(),
			"owner":  owner.Hex(),
		})
}

// HashDecryption returns the digest attesting that clearValue is the genuine
// decryption of handle.
func (a *AttestationSigner) HashDecryption(handle common.Hash, clearValue uint64) ([]byte, error) {
	return a.hash("DecryptionAttestation",
		[]apitypes.Type{
			{Name: "handle", Type: "bytes32"},
			{Name: "clearValue", Type: "uint256"},
		},
		apitypes.TypedDataMessage{
			"handle":     handle.Hex(),
			"clearValue": new(big.Int).SetUint64(clearValue).String(),
		})
}

// SignInputCiphertext produces an input proof for a fresh handle.
func (a *AttestationSigner) SignInputCiphertext(signer *Signer, handle common.Hash, owner common.Address) ([]byte, error) {
	hash, err := a.HashInputCiphertext(handle, owner)
	if err != nil {
		return nil, err
	}
	return signer.Sign(hash)
}

// SignDecryption produces a decryption attestation for one handle/value pair.
func (a *AttestationSigner) SignDecryption(signer *Signer, handle common.Hash, clearValue uint64) ([]byte, error) {
	hash, err := a.HashDecryption(handle, clearValue)
	if err != nil {
		return nil, err
	}
	return signer.Sign(hash)
}

// VerifyInputCiphertext checks an input proof against the expected oracle.
func (a *AttestationSigner) VerifyInputCiphertext(oracle common.Address, handle common.Hash, owner common.Address, signature []byte) (bool, error) {
	hash, err := a.HashInputCiphertext(handle, owner)
	if err != nil {
		return false, err
	}
	return VerifySignature(oracle, hash, signature), nil
}

// VerifyDecryption checks a decryption attestation against the expected
// oracle. A signature minted for any other handle or value fails here.
func (a *AttestationSigner) VerifyDecryption(oracle common.Address, handle common.Hash, clearValue uint64, signature []byte) (bool, error) {
	hash, err := a.HashDecryption(handle, clearValue)
	if err != nil {
		return false, err
	}
	return VerifySignature(oracle, hash, signature), nil
}
