package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestGenerateKey(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	if signer.Address() == (common.Address{}) {
		t.Error("generated zero address")
	}

	privHex := signer.PrivateKeyHex()
	if len(privHex) != 64 {
		t.Errorf("private key hex length = %d, want 64", len(privHex))
	}
}

func TestFromPrivateKeyHex(t *testing.T) {
	signer1, _ := GenerateKey()
	privHex := signer1.PrivateKeyHex()
	expectedAddr := signer1.Address()

	signer2, err := FromPrivateKeyHex(privHex)
	if err != nil {
		t.Fatalf("failed to load key: %v", err)
	}
	if signer2.Address() != expectedAddr {
		t.Errorf("address = %s, want %s", signer2.Address().Hex(), expectedAddr.Hex())
	}

	// 0x prefix accepted too
	signer3, err := FromPrivateKeyHex("0x" + privHex)
	if err != nil {
		t.Fatalf("failed to load 0x-prefixed key: %v", err)
	}
	if signer3.Address() != expectedAddr {
		t.Errorf("prefixed address = %s, want %s", signer3.Address().Hex(), expectedAddr.Hex())
	}
}

func TestSignAndVerify(t *testing.T) {
	signer, _ := GenerateKey()

	hash := ethcrypto.Keccak256Hash([]byte("attestation digest")).Bytes()
	signature, err := signer.Sign(hash)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	// Signature should be 65 bytes [R || S || V]
	if len(signature) != 65 {
		t.Errorf("signature length = %d, want 65", len(signature))
	}

	if !VerifySignature(signer.Address(), hash, signature) {
		t.Error("signature verification failed")
	}

	wrongAddr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	if VerifySignature(wrongAddr, hash, signature) {
		t.Error("signature should not verify with wrong address")
	}
}

func TestRecoverAddress(t *testing.T) {
	signer, _ := GenerateKey()

	hash := ethcrypto.Keccak256Hash([]byte("recover me")).Bytes()
	signature, err := signer.Sign(hash)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	recoveredAddr, err := RecoverAddress(hash, signature)
	if err != nil {
		t.Fatalf("failed to recover address: %v", err)
	}
	if recoveredAddr != signer.Address() {
		t.Errorf("recovered address = %s, want %s", recoveredAddr.Hex(), signer.Address().Hex())
	}
}

func TestInvalidSignature(t *testing.T) {
	signer, _ := GenerateKey()
	hash := common.BytesToHash([]byte("test")).Bytes()

	invalidSig := []byte{1, 2, 3}
	if VerifySignature(signer.Address(), hash, invalidSig) {
		t.Error("invalid signature should not verify")
	}

	validSig := make([]byte, 65)
	if VerifySignature(signer.Address(), []byte("short"), validSig) {
		t.Error("invalid hash should not verify")
	}
}

func TestAttestationSignVerify(t *testing.T) {
	oracle, _ := GenerateKey()
	att := NewAttestationSigner(DefaultDomain(1337))

	handle := ethcrypto.Keccak256Hash([]byte("ciphertext"))
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0")

	inputProof, err := att.SignInputCiphertext(oracle, handle, owner)
	if err != nil {
		t.Fatalf("failed to sign input proof: %v", err)
	}
	ok, err := att.VerifyInputCiphertext(oracle.Address(), handle, owner, inputProof)
	if err != nil {
		t.Fatalf("verify input proof: %v", err)
	}
	if !ok {
		t.Error("input proof should verify")
	}

	// proof bound to owner, a different owner must fail
	other := common.HexToAddress("0x0000000000000000000000000000000000000002")
	ok, _ = att.VerifyInputCiphertext(oracle.Address(), handle, other, inputProof)
	if ok {
		t.Error("input proof should not verify for another owner")
	}
}

func TestDecryptionAttestationBinding(t *testing.T) {
	oracle, _ := GenerateKey()
	att := NewAttestationSigner(DefaultDomain(1337))

	amountHandle := ethcrypto.Keccak256Hash([]byte("amount"))
	priceHandle := ethcrypto.Keccak256Hash([]byte("price"))

	proof, err := att.SignDecryption(oracle, amountHandle, 100)
	if err != nil {
		t.Fatalf("failed to sign decryption: %v", err)
	}

	ok, err := att.VerifyDecryption(oracle.Address(), amountHandle, 100, proof)
	if err != nil {
		t.Fatalf("verify decryption: %v", err)
	}
	if !ok {
		t.Error("attestation should verify for its own handle and value")
	}

	// tampered value
	if ok, _ := att.VerifyDecryption(oracle.Address(), amountHandle, 101, proof); ok {
		t.Error("attestation should not verify for a different value")
	}

	// cross-binding: amount attestation replayed against the price handle
	if ok, _ := att.VerifyDecryption(oracle.Address(), priceHandle, 100, proof); ok {
		t.Error("attestation should not verify for a different handle")
	}

	// wrong oracle
	impostor, _ := GenerateKey()
	if ok, _ := att.VerifyDecryption(impostor.Address(), amountHandle, 100, proof); ok {
		t.Error("attestation should not verify against another oracle")
	}
}
