package params

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type FHEMode string

const (
	// FHELocal runs the in-process dev engine with a generated (or supplied)
	// oracle key. Handles do not survive a restart.
	FHELocal FHEMode = "local"
	// FHEGateway talks to an external gateway; attestations are checked
	// against its published oracle address.
	FHEGateway FHEMode = "gateway"
)

type Ledger struct {
	DBPath string // pebble directory; empty means in-memory store
}

type API struct {
	Addr        string
	CORSOrigins []string
}

type FHE struct {
	Mode          FHEMode
	GatewayURL    string
	OracleAddress string // required in gateway mode
	OracleKey     string // dev only: local engine signing key (hex)
	ChainID       int64
}

type Config struct {
	Ledger  Ledger
	API     API
	FHE     FHE
	LogFile string
}

func Default() Config {
	return Config{
		Ledger: Ledger{DBPath: "data/ledger"},
		API: API{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		FHE: FHE{
			Mode:    FHELocal,
			ChainID: 1337,
		},
		LogFile: "data/node.log",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("LEDGER_DB_PATH"); v != "" {
		cfg.Ledger.DBPath = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.API.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("FHE_MODE"); v != "" {
		cfg.FHE.Mode = FHEMode(v)
	}
	if v := os.Getenv("FHE_GATEWAY_URL"); v != "" {
		cfg.FHE.GatewayURL = v
	}
	if v := os.Getenv("FHE_ORACLE_ADDRESS"); v != "" {
		cfg.FHE.OracleAddress = v
	}
	if v := os.Getenv("FHE_ORACLE_KEY"); v != "" {
		cfg.FHE.OracleKey = v
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.FHE.ChainID = id
		}
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg
}
