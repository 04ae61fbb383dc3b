package types

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	Addr string `env:"ADDR"`

	RESTEndpoint   string        `env:"LUMERA_REST"`
	RPCEndpoint    string        `env:"LUMERA_RPC"`
	GatewayOrigin  string        `env:"GATEWAY_ORIGIN"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT"`
	ProbeRetries   int           `env:"PROBE_RETRIES"`

	FetchWorkers    int           `env:"FETCH_WORKERS"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`

	// WalletAddress, when set, is tracked automatically as the connected wallet.
	WalletAddress string `env:"WALLET_ADDRESS"`

	RedisEnabled bool `env:"REDIS_ENABLED"`

	LogLevel    string `env:"LOG_LEVEL"`
	LogEncoding string `env:"LOG_ENCODING"`
}

// DefaultConfig returns the settings used for anything the environment leaves unset.
func DefaultConfig() Config {
	return Config{
		Addr:            ":3000",
		RESTEndpoint:    "https://lcd.testnet.lumera.io",
		RPCEndpoint:     "https://rpc.testnet.lumera.io",
		GatewayTimeout:  15 * time.Second,
		ProbeRetries:    3,
		FetchWorkers:    16,
		RefreshInterval: 30 * time.Second,
		LogLevel:        "info",
		LogEncoding:     "json",
	}
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Warning: .env file not found, relying on environment variables")
	}

	config := DefaultConfig()
	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}
