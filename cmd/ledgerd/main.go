package main

import (
	"log"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cloakbook/cloakbook/params"
	"github.com/cloakbook/cloakbook/pkg/api"
	"github.com/cloakbook/cloakbook/pkg/coordinator"
	"github.com/cloakbook/cloakbook/pkg/crypto"
	"github.com/cloakbook/cloakbook/pkg/fhe"
	"github.com/cloakbook/cloakbook/pkg/ledger"
	"github.com/cloakbook/cloakbook/pkg/storage"
	"github.com/cloakbook/cloakbook/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load .env from current directory

	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Storage ----
	var store ledger.Store
	if cfg.Ledger.DBPath == "" {
		sugar.Warnw("ledger_in_memory", "reason", "LEDGER_DB_PATH empty; orders will not survive restart")
		store = storage.NewMemStore()
	} else {
		ps, err := storage.NewPebbleStore(cfg.Ledger.DBPath)
		if err != nil {
			sugar.Fatalw("ledger_open_failed", "path", cfg.Ledger.DBPath, "err", err)
		}
		store = ps
	}
	defer store.Close()

	// ---- FHE collaborator ----
	domain := crypto.DefaultDomain(cfg.FHE.ChainID)

	var engine fhe.Engine
	var verifier *fhe.Verifier
	switch cfg.FHE.Mode {
	case params.FHEGateway:
		if cfg.FHE.GatewayURL == "" || cfg.FHE.OracleAddress == "" {
			sugar.Fatalw("fhe_gateway_misconfigured",
				"hint", "FHE_GATEWAY_URL and FHE_ORACLE_ADDRESS are required in gateway mode")
		}
		engine = fhe.NewGatewayClient(cfg.FHE.GatewayURL)
		verifier = fhe.NewVerifier(domain, common.HexToAddress(cfg.FHE.OracleAddress))
		sugar.Infow("fhe_gateway", "url", cfg.FHE.GatewayURL, "oracle", cfg.FHE.OracleAddress)

	case params.FHELocal:
		var oracle *crypto.Signer
		if cfg.FHE.OracleKey != "" {
			oracle, err = crypto.FromPrivateKeyHex(cfg.FHE.OracleKey)
		} else {
			oracle, err = crypto.GenerateKey()
		}
		if err != nil {
			sugar.Fatalw("fhe_oracle_key", "err", err)
		}
		local := fhe.NewLocalEngine(domain, oracle)
		engine = local
		verifier = local.Verifier()
		sugar.Infow("fhe_local", "oracle", oracle.Address().Hex())

	default:
		sugar.Fatalw("fhe_mode_unknown", "mode", cfg.FHE.Mode)
	}

	// ---- Ledger, coordinator, API ----
	l := ledger.New(store, verifier, sugar)
	l.Subscribe(ledger.SinkFuncs{
		OnOrderCreated: func(ev ledger.OrderCreatedEvent) {
			sugar.Infow("event_order_created", "id", ev.ID, "creator", ev.Creator.Hex())
		},
		OnDecryptionVerified: func(ev ledger.DecryptionVerifiedEvent) {
			sugar.Infow("event_decryption_verified", "id", ev.ID, "amount", ev.Amount, "price", ev.Price)
		},
	})

	coord := coordinator.New(l, engine, sugar)
	server := api.NewServer(l, coord)

	sugar.Infow("starting", "addr", cfg.API.Addr, "db", cfg.Ledger.DBPath)
	if err := server.Start(cfg.API.Addr, cfg.API.CORSOrigins); err != nil {
		sugar.Fatalw("server_exit", "err", err)
	}
}
