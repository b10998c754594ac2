package fhe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// GatewayClient talks to an external FHE gateway over HTTP. Encryption and
// decryption are remote; attestation checks stay local in Verifier, keyed by
// the gateway's published oracle address.
type GatewayClient struct {
	client *resty.Client
}

// NewGatewayClient creates a client for the gateway at baseURL. Transient
// failures are retried with backoff; a decryption request that reached the
// gateway runs to completion there regardless of what happens to this client.
func NewGatewayClient(baseURL string) *GatewayClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)

	return &GatewayClient{client: client}
}

type encryptRequest struct {
	Owner     common.Address `json:"owner"`
	Plaintext uint64         `json:"plaintext"`
}

type decryptRequest struct {
	RequestID string        `json:"requestId"`
	Handles   []common.Hash `json:"handles"`
}

type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Encrypt requests a ciphertext handle and input proof from the gateway.
func (g *GatewayClient) Encrypt(ctx context.Context, owner common.Address, plaintext uint64) (Ciphertext, error) {
	var out Ciphertext
	var gwErr gatewayError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(encryptRequest{Owner: owner, Plaintext: plaintext}).
		SetResult(&out).
		SetError(&gwErr).
		Post("/v1/encrypt")
	if err != nil {
		return Ciphertext{}, fmt.Errorf("gateway encrypt: %w", err)
	}
	if resp.IsError() {
		return Ciphertext{}, fmt.Errorf("gateway encrypt: %s (%s)", resp.Status(), gwErr.Error)
	}
	if out.Handle == (common.Hash{}) || len(out.InputProof) == 0 {
		return Ciphertext{}, fmt.Errorf("gateway encrypt: incomplete response")
	}
	return out, nil
}

// RequestDecryption asks the gateway for cleartexts and attestations. The
// request id is for log correlation on both sides; the gateway treats
// repeated ids as fresh requests.
func (g *GatewayClient) RequestDecryption(ctx context.Context, handles []common.Hash) (*Decryption, error) {
	var out Decryption
	var gwErr gatewayError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(decryptRequest{RequestID: uuid.NewString(), Handles: handles}).
		SetResult(&out).
		SetError(&gwErr).
		Post("/v1/decrypt")
	if err != nil {
		return nil, fmt.Errorf("gateway decrypt: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway decrypt: %s (%s)", resp.Status(), gwErr.Error)
	}

	if out.Values == nil {
		out.Values = map[common.Hash]uint64{}
	}
	if out.Proofs == nil {
		out.Proofs = map[common.Hash]hexutil.Bytes{}
	}
	for _, h := range handles {
		if _, ok := out.Values[h]; !ok {
			return nil, fmt.Errorf("gateway decrypt: missing value for %s", h.Hex())
		}
	}
	return &out, nil
}

var _ Engine = (*GatewayClient)(nil)
