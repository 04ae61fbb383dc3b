package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 16, cfg.FetchWorkers)
	assert.Equal(t, "https://lcd.testnet.lumera.io", cfg.RESTEndpoint)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ADDR", ":8080")
	t.Setenv("LUMERA_REST", "http://localhost:1317")
	t.Setenv("GATEWAY_TIMEOUT", "5s")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("FETCH_WORKERS", "4")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("WALLET_ADDRESS", "lumera1abc")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:1317", cfg.RESTEndpoint)
	assert.Equal(t, "https://rpc.testnet.lumera.io", cfg.RPCEndpoint)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 4, cfg.FetchWorkers)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "lumera1abc", cfg.WalletAddress)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("FETCH_WORKERS", "many")

	_, err := LoadConfig()
	assert.Error(t, err)
}
