// encrypt-order encrypts an order's confidential fields against the local dev
// engine and prints the JSON body for POST /api/v1/orders. Point it at the
// same FHE_ORACLE_KEY the node runs with, or the input proofs will not check
// out.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cloakbook/cloakbook/params"
	"github.com/cloakbook/cloakbook/pkg/api"
	"github.com/cloakbook/cloakbook/pkg/crypto"
	"github.com/cloakbook/cloakbook/pkg/fhe"
)

func main() {
	var (
		id     = flag.String("id", "", "order id (required)")
		name   = flag.String("name", "", "order name")
		asset  = flag.String("asset", "commodity", "asset type")
		owner  = flag.String("owner", "", "creator address 0x... (required)")
		amount = flag.Uint64("amount", 0, "confidential amount to encrypt")
		price  = flag.Uint64("price", 0, "price (public, and encrypted for later attestation)")
	)
	flag.Parse()

	if *id == "" || *owner == "" || !common.IsHexAddress(*owner) {
		flag.Usage()
		os.Exit(2)
	}

	cfg := params.LoadFromEnv("")
	if cfg.FHE.OracleKey == "" {
		fmt.Fprintln(os.Stderr, "FHE_ORACLE_KEY not set; generating a throwaway oracle (the node will reject these proofs)")
	}

	var oracle *crypto.Signer
	var err error
	if cfg.FHE.OracleKey != "" {
		oracle, err = crypto.FromPrivateKeyHex(cfg.FHE.OracleKey)
	} else {
		oracle, err = crypto.GenerateKey()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "oracle key: %v\n", err)
		os.Exit(1)
	}

	engine := fhe.NewLocalEngine(crypto.DefaultDomain(cfg.FHE.ChainID), oracle)
	ctx := context.Background()
	creator := common.HexToAddress(*owner)

	encAmount, err := engine.Encrypt(ctx, creator, *amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encrypt amount: %v\n", err)
		os.Exit(1)
	}
	encPrice, err := engine.Encrypt(ctx, creator, *price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encrypt price: %v\n", err)
		os.Exit(1)
	}

	req := api.CreateOrderRequest{
		ID:               *id,
		Name:             *name,
		AssetType:        *asset,
		Creator:          creator,
		PublicPrice:      int64(*price),
		EncAmount:        encAmount.Handle,
		AmountInputProof: encAmount.InputProof,
		EncPrice:         encPrice.Handle,
		PriceInputProof:  encPrice.InputProof,
	}

	out, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
