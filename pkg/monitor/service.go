package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/pkg/aggregator"
	"github.com/lumera-stats/lumerawatch/pkg/heatmap"
	"github.com/lumera-stats/lumerawatch/pkg/metrics"
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/store"
)

const (
	// NetworkBlockWindow is the number of recent blocks network stats are derived from.
	NetworkBlockWindow = 10
	// DefaultBlockCount is the size of the latest blocks listing.
	DefaultBlockCount = 20
	// MaxBlockCount caps the latest blocks listing.
	MaxBlockCount = 100
)

// Service ties the gateway, the aggregator and the persisted history together and keeps
// the last snapshot of every topic.
type Service struct {
	client     rpc.Client
	aggregator *aggregator.Aggregator
	gas        *store.GasHistory
	tracker    *portfolio.Tracker
	publisher  Publisher
	logger     *zap.Logger
	now        func() time.Time

	// gasMu serializes the load-merge-save cycle of the gas history.
	gasMu     sync.Mutex
	snapshots *xsync.Map[string, Snapshot]
}

// NewService wires a Service. publisher may be nil.
func NewService(
	client rpc.Client,
	agg *aggregator.Aggregator,
	gas *store.GasHistory,
	tracker *portfolio.Tracker,
	publisher Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		client:     client,
		aggregator: agg,
		gas:        gas,
		tracker:    tracker,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
		snapshots:  xsync.NewMap[string, Snapshot](),
	}
}

// Tracker exposes the profit/loss tracker.
func (s *Service) Tracker() *portfolio.Tracker {
	return s.tracker
}

// NetworkStats derives chain health from the most recent blocks. A failed validator listing
// leaves the validator counts at zero.
func (s *Service) NetworkStats(ctx context.Context) (models.NetworkStats, error) {
	blocks, latest, err := s.aggregator.FetchLatestBlocks(ctx, NetworkBlockWindow)
	if err != nil {
		return models.NetworkStats{}, fmt.Errorf("network stats: %w", err)
	}
	usage := s.aggregator.SampleGasUsage(ctx, blocks)
	stats := metrics.ComputeNetworkStats(latest, blocks, usage)

	validators, err := s.client.Validators(ctx)
	if err != nil {
		s.logger.Warn("[monitor] validator listing failed", zap.Error(err))
	} else {
		stats.ActiveValidators, stats.TotalValidators = metrics.BondedRatio(validators)
	}
	stats.UpdatedAt = s.now()

	s.record(ctx, TopicNetwork, stats)
	return stats, nil
}

// GasFeeStats samples recent gas prices, folds them into the persisted 24h history and
// summarizes it. It never fails: when the chain head cannot be resolved the default levels
// are returned.
func (s *Service) GasFeeStats(ctx context.Context) models.GasFeeStats {
	s.gasMu.Lock()
	defer s.gasMu.Unlock()

	now := s.now()
	existing := s.gas.Load(ctx)

	latest, err := s.client.LatestHeight(ctx)
	if err != nil || latest == 0 {
		s.logger.Warn("[monitor] gas sampling skipped", zap.Uint64("latestHeight", latest), zap.Error(err))
		stats := metrics.DefaultGasFeeStats(now)
		s.record(ctx, TopicGas, stats)
		return stats
	}

	samples := s.aggregator.SampleGasPrices(ctx, latest)
	if merged := store.MergeGasHistory(existing, samples); len(merged) > 0 {
		if err := s.gas.Save(ctx, merged); err != nil {
			s.logger.Warn("[monitor] persist gas history", zap.Error(err))
		}
	}

	stats := metrics.ComputeGasFeeStats(existing, samples, now)
	s.record(ctx, TopicGas, stats)
	return stats
}

// LatestBlocks lists the newest blocks, newest first. count is clamped to [1, MaxBlockCount].
func (s *Service) LatestBlocks(ctx context.Context, count int) ([]models.BlockInfo, error) {
	if count <= 0 {
		count = DefaultBlockCount
	}
	if count > MaxBlockCount {
		count = MaxBlockCount
	}
	blocks, _, err := s.aggregator.FetchLatestBlocks(ctx, count)
	if err != nil {
		return nil, err
	}
	s.record(ctx, TopicBlocks, blocks)
	return blocks, nil
}

func (s *Service) Validators(ctx context.Context) ([]models.Validator, error) {
	return s.client.Validators(ctx)
}

func (s *Service) Balances(ctx context.Context, address string) ([]models.Coin, error) {
	return s.client.Balances(ctx, address)
}

func (s *Service) Delegations(ctx context.Context, address string) ([]models.Delegation, error) {
	return s.client.Delegations(ctx, address)
}

// Transaction looks a transaction up by hash and decodes it.
func (s *Service) Transaction(ctx context.Context, hash string) (models.TransactionDetail, error) {
	env, err := s.client.TxByHash(ctx, hash)
	if err != nil {
		return models.TransactionDetail{}, err
	}
	return rpc.DecodeTransaction(*env, s.now())
}

// Activity builds the day-by-day activity report of an address.
func (s *Service) Activity(ctx context.Context, address string) heatmap.Report {
	txs := s.aggregator.FetchTransactionsForAddress(ctx, address)
	return heatmap.Build(address, txs, s.now())
}

// RefreshWallets refreshes every tracked wallet and publishes their profit/loss reports.
func (s *Service) RefreshWallets(ctx context.Context) ([]portfolio.Report, error) {
	wallets, err := s.tracker.RefreshAll(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]portfolio.Report, 0, len(wallets))
	for _, w := range wallets {
		reports = append(reports, portfolio.BuildReport(w))
	}
	s.record(ctx, TopicWallets, reports)
	return reports, nil
}

// PublishWallets records the current reports without refreshing balances.
func (s *Service) PublishWallets(ctx context.Context) ([]portfolio.Report, error) {
	reports, err := s.tracker.Reports(ctx)
	if err != nil {
		return nil, err
	}
	s.record(ctx, TopicWallets, reports)
	return reports, nil
}
