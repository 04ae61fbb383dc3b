package monitor_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lumera-stats/lumerawatch/pkg/aggregator"
	"github.com/lumera-stats/lumerawatch/pkg/metrics"
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/monitor"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/store"
)

const testAddress = "lumera1qyqszqgpqyqszqgpqyqszqgpqyqszqgp7z8k0n"

var chainStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	client    *fakeClient
	kv        *store.MemoryKV
	publisher *recordingPublisher
	service   *monitor.Service
}

func newFixture(t *testing.T, client *fakeClient) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	kv := store.NewMemoryKV()
	agg := aggregator.New(client, logger, 4)
	t.Cleanup(agg.Close)
	tracker := portfolio.NewTracker(client, store.NewWalletStore(kv, logger), logger, 4)
	t.Cleanup(tracker.Close)
	publisher := newRecordingPublisher()

	return &fixture{
		client:    client,
		kv:        kv,
		publisher: publisher,
		service:   monitor.NewService(client, agg, store.NewGasHistory(kv, logger), tracker, publisher, logger),
	}
}

// chain serves blocks 1..head produced every 6 seconds with txs transactions each.
func chain(head uint64, txs int) *fakeClient {
	return &fakeClient{
		latestHeight: func(context.Context) (uint64, error) { return head, nil },
		blockByHeight: func(_ context.Context, height uint64) (*models.BlockInfo, error) {
			if height > head {
				return nil, &rpc.GatewayError{Kind: rpc.KindHTTP, Status: 404}
			}
			return &models.BlockInfo{
				Height: height,
				Time:   chainStart.Add(time.Duration(height) * 6 * time.Second),
				NumTxs: txs,
			}, nil
		},
	}
}

func TestNetworkStats(t *testing.T) {
	client := chain(100, 3)
	client.validators = func(context.Context) ([]models.Validator, error) {
		return []models.Validator{
			{OperatorAddress: "v1", Status: models.BondStatusBonded},
			{OperatorAddress: "v2", Status: "2"},
			{OperatorAddress: "v3", Status: "BOND_STATUS_UNBONDED"},
		}, nil
	}
	f := newFixture(t, client)

	stats, err := f.service.NetworkStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), stats.LatestHeight)
	assert.InDelta(t, 6.0, stats.BlockTime, 1e-9)
	assert.InDelta(t, 0.5, stats.TPS, 1e-9)
	assert.Equal(t, 30, stats.TotalTransactions)
	assert.Equal(t, 2, stats.ActiveValidators)
	assert.Equal(t, 3, stats.TotalValidators)
	assert.Equal(t, models.NetworkHealthy, stats.NetworkStatus)
	assert.False(t, stats.UpdatedAt.IsZero())

	snap, ok := f.service.Snapshot(monitor.TopicNetwork)
	require.True(t, ok)
	var cached models.NetworkStats
	require.NoError(t, json.Unmarshal(snap.Data, &cached))
	assert.Equal(t, uint64(100), cached.LatestHeight)

	require.Equal(t, 1, f.publisher.count("lumera:network:updated"))
	var msg monitor.Snapshot
	require.NoError(t, json.Unmarshal(f.publisher.last("lumera:network:updated"), &msg))
	assert.Equal(t, monitor.TopicNetwork, msg.Topic)
}

func TestNetworkStats_ValidatorFailureKeepsStats(t *testing.T) {
	f := newFixture(t, chain(50, 1))

	stats, err := f.service.NetworkStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(50), stats.LatestHeight)
	assert.Zero(t, stats.TotalValidators)
	assert.Zero(t, stats.ActiveValidators)
}

func TestNetworkStats_HeadFailure(t *testing.T) {
	f := newFixture(t, &fakeClient{})

	_, err := f.service.NetworkStats(context.Background())
	require.Error(t, err)

	_, ok := f.service.Snapshot(monitor.TopicNetwork)
	assert.False(t, ok)
	assert.Zero(t, f.publisher.count(monitor.Channel(monitor.TopicNetwork)))
}

func TestGasFeeStats_FallsBackWhenHeadUnavailable(t *testing.T) {
	f := newFixture(t, &fakeClient{})

	stats := f.service.GasFeeStats(context.Background())
	assert.Equal(t, metrics.FallbackLevels(), stats.Current)
	assert.Equal(t, metrics.FallbackGasLow, stats.Min24h)
	assert.Equal(t, metrics.FallbackGasHigh, stats.Max24h)
	assert.Equal(t, metrics.FallbackGasAverage, stats.Avg24h)
	assert.Empty(t, stats.History24h)
	assert.Equal(t, 1, f.publisher.count("lumera:gas:updated"))
}

func TestGasFeeStats_UsesPersistedHistory(t *testing.T) {
	f := newFixture(t, chain(30, 0))
	logger := zaptest.NewLogger(t)
	history := store.NewGasHistory(f.kv, logger)

	now := time.Now()
	require.NoError(t, history.Save(context.Background(), []models.GasPriceData{
		{Timestamp: now.Add(-3 * time.Hour), GasPrice: 0.02, GasUsed: 100, GasWanted: 120},
		{Timestamp: now.Add(-2 * time.Hour), GasPrice: 0.03, GasUsed: 100, GasWanted: 120},
		{Timestamp: now.Add(-1 * time.Hour), GasPrice: 0.04, GasUsed: 100, GasWanted: 120},
	}))

	stats := f.service.GasFeeStats(context.Background())
	assert.InDelta(t, 0.02, stats.Current.Low, 1e-9)
	assert.InDelta(t, 0.03, stats.Current.Average, 1e-9)
	assert.InDelta(t, 0.04, stats.Current.High, 1e-9)
	assert.InDelta(t, 0.02, stats.Min24h, 1e-9)
	assert.InDelta(t, 0.04, stats.Max24h, 1e-9)
	assert.Len(t, stats.History24h, 3)

	assert.Len(t, history.Load(context.Background()), 3)
}

func TestLatestBlocks(t *testing.T) {
	f := newFixture(t, chain(500, 0))

	blocks, err := f.service.LatestBlocks(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, blocks, monitor.DefaultBlockCount)
	assert.Equal(t, uint64(500), blocks[0].Height)
	assert.Equal(t, uint64(481), blocks[len(blocks)-1].Height)

	blocks, err = f.service.LatestBlocks(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, blocks, monitor.MaxBlockCount)

	assert.Equal(t, 2, f.publisher.count(monitor.Channel(monitor.TopicBlocks)))
}

func TestTransaction(t *testing.T) {
	client := &fakeClient{
		txByHash: func(_ context.Context, hash string) (*rpc.TxEnvelope, error) {
			if hash != "ABCDEF" {
				return nil, &rpc.GatewayError{Kind: rpc.KindHTTP, Status: 404}
			}
			var resp rpc.GetTxResponse
			raw := `{
				"tx": {"body": {"messages": [{"@type": "/cosmos.bank.v1beta1.MsgSend", "from_address": "lumera1a", "to_address": "lumera1b", "amount": [{"denom": "ulume", "amount": "1500000"}]}], "memo": "rent"}},
				"tx_response": {"height": "42", "txhash": "ABCDEF", "code": 0, "timestamp": "2025-06-01T10:00:00Z"}
			}`
			if err := json.Unmarshal([]byte(raw), &resp); err != nil {
				return nil, err
			}
			return &rpc.TxEnvelope{Tx: resp.Tx, Response: resp.TxResponse}, nil
		},
	}
	f := newFixture(t, client)

	tx, err := f.service.Transaction(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", tx.Hash)
	assert.Equal(t, uint64(42), tx.Height)
	assert.Equal(t, models.TxStatusSuccess, tx.Status)
	assert.Equal(t, "rent", tx.Memo)
	assert.Equal(t, "1500000", tx.Amount)

	_, err = f.service.Transaction(context.Background(), "MISSING")
	require.Error(t, err)
	assert.True(t, rpc.IsNotFound(err))
}

func TestActivity_EmptyHistory(t *testing.T) {
	client := &fakeClient{
		txsByEvent: func(context.Context, string, int) ([]rpc.TxEnvelope, error) { return nil, nil },
	}
	f := newFixture(t, client)

	report := f.service.Activity(context.Background(), testAddress)
	assert.Equal(t, testAddress, report.Address)
	assert.Empty(t, report.Days)
	assert.Len(t, report.Calendar, 53)
	assert.Zero(t, report.Summary.TotalTransactions)
	assert.Equal(t, 1, report.Summary.MaxCount)
}

func TestRefreshWallets(t *testing.T) {
	amount := "1000000"
	client := &fakeClient{
		balances: func(context.Context, string) ([]models.Coin, error) {
			return []models.Coin{{Denom: "ulume", Amount: amount}}, nil
		},
	}
	f := newFixture(t, client)
	ctx := context.Background()

	_, err := f.service.Tracker().Add(ctx, testAddress, "Savings")
	require.NoError(t, err)

	amount = "1200000"
	reports, err := f.service.RefreshWallets(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "+0.200000", reports[0].TotalDifference)
	assert.Equal(t, "+20.00%", reports[0].TotalPercent)
	assert.Equal(t, 1, f.publisher.count(monitor.Channel(monitor.TopicWallets)))

	published, err := f.service.PublishWallets(ctx)
	require.NoError(t, err)
	assert.Equal(t, reports[0].TotalDifference, published[0].TotalDifference)
	assert.Len(t, f.service.Snapshots(), 1)
}

func TestChannels(t *testing.T) {
	assert.Equal(t, "lumera:gas:updated", monitor.Channel(monitor.TopicGas))
	assert.Equal(t, "lumera:*:updated", monitor.ChannelPattern())
	assert.Equal(t, "gas", monitor.TopicOf("lumera:gas:updated"))
	assert.Equal(t, "wallets", monitor.TopicOf("lumera:wallets:updated"))
	assert.Empty(t, monitor.TopicOf("other:gas:updated"))
	assert.Empty(t, monitor.TopicOf("lumera:gas"))
	assert.Empty(t, monitor.TopicOf("lumera::updated"))
}
