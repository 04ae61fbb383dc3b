package aggregator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"go.uber.org/zap"
)

const (
	// BatchSize is the number of heights fetched concurrently; batches run one after another.
	BatchSize = 5
	// DefaultWorkers sizes the shared fetch pool.
	DefaultWorkers = 16
	// HistoryLimit is the page size of each address history query.
	HistoryLimit = 50

	gasSampleBlocks   = 20
	gasSampleTxs      = 3
	usageSampleBlocks = 5
	usageSampleTxs    = 5
)

// Aggregator fans gateway calls out over a shared worker pool and assembles blocks,
// address histories and gas samples. Individual call failures are logged and skipped.
type Aggregator struct {
	client rpc.Client
	logger *zap.Logger
	pool   pond.Pool
	now    func() time.Time
}

// New creates an Aggregator with a pool of the given size (DefaultWorkers when <= 0).
func New(client rpc.Client, logger *zap.Logger, workers int) *Aggregator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		client: client,
		logger: logger,
		pool:   pond.NewPool(workers, pond.WithQueueSize(workers*BatchSize)),
		now:    time.Now,
	}
}

// Close stops the worker pool and waits for in-flight calls.
func (a *Aggregator) Close() {
	a.pool.StopAndWait()
}

// waitGroup waits for a pond group, logging anything other than cancellation.
func (a *Aggregator) waitGroup(group interface{ Wait() error }, op string) {
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		a.logger.Warn("parallel fetch encountered error",
			zap.String("op", op),
			zap.Error(err))
	}
}

// heightBatches splits [start, latest] into descending batches of at most size heights.
func heightBatches(latest, start uint64, size int) [][]uint64 {
	if latest < start || size <= 0 {
		return nil
	}
	var batches [][]uint64
	batch := make([]uint64, 0, size)
	for h := latest; ; h-- {
		batch = append(batch, h)
		if len(batch) == size {
			batches = append(batches, batch)
			batch = make([]uint64, 0, size)
		}
		if h == start {
			break
		}
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches
}

// startHeight returns max(1, latest-count+1).
func startHeight(latest uint64, count int) uint64 {
	if count <= 0 || uint64(count) >= latest {
		return 1
	}
	return latest - uint64(count) + 1
}

// FetchBlockRange fetches the count blocks ending at latestHeight. Heights are walked downward in
// batches of BatchSize; heights that fail are logged and omitted. The result is sorted by height
// descending and holds at most one block per height.
func (a *Aggregator) FetchBlockRange(ctx context.Context, latestHeight uint64, count int) []models.BlockInfo {
	if latestHeight == 0 || count <= 0 {
		return []models.BlockInfo{}
	}
	start := startHeight(latestHeight, count)

	var mu sync.Mutex
	byHeight := make(map[uint64]models.BlockInfo, count)

	for _, batch := range heightBatches(latestHeight, start, BatchSize) {
		if ctx.Err() != nil {
			break
		}
		group := a.pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		for _, height := range batch {
			group.Submit(func() {
				if groupCtx.Err() != nil {
					return
				}
				block, err := a.client.BlockByHeight(groupCtx, height)
				if err != nil {
					a.logger.Debug("skipping block",
						zap.Uint64("height", height),
						zap.Error(err))
					return
				}
				mu.Lock()
				byHeight[block.Height] = *block
				mu.Unlock()
			})
		}
		a.waitGroup(group, "fetch_block_range")
	}

	blocks := make([]models.BlockInfo, 0, len(byHeight))
	for _, b := range byHeight {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Height > blocks[j].Height })
	return blocks
}

// FetchLatestBlocks resolves the chain head and returns the count most recent blocks with it.
// A head of height 0 yields no blocks.
func (a *Aggregator) FetchLatestBlocks(ctx context.Context, count int) ([]models.BlockInfo, uint64, error) {
	latest, err := a.client.LatestHeight(ctx)
	if err != nil {
		return nil, 0, err
	}
	return a.FetchBlockRange(ctx, latest, count), latest, nil
}
