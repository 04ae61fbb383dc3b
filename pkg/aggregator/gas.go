package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/metrics"
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"go.uber.org/zap"
)

// SampleGasPrices derives gas price samples from the first transactions of the most recent blocks.
// Each transaction is looked up by its canonical hash; lookups that fail or carry no usable fee
// are skipped.
func (a *Aggregator) SampleGasPrices(ctx context.Context, latestHeight uint64) []models.GasPriceData {
	blocks := a.FetchBlockRange(ctx, latestHeight, gasSampleBlocks)

	var mu sync.Mutex
	samples := make([]models.GasPriceData, 0, len(blocks)*gasSampleTxs)
	a.lookupTxs(ctx, blocks, len(blocks), gasSampleTxs, "sample_gas_prices", func(block models.BlockInfo, env *rpc.TxEnvelope) {
		if env.Response == nil {
			return
		}
		fee, ok := env.Fee()
		if !ok {
			return
		}
		ts := block.Time
		if parsed, err := time.Parse(time.RFC3339Nano, env.Response.Timestamp); err == nil {
			ts = parsed
		}
		if ts.IsZero() {
			ts = a.now()
		}
		sample, ok := metrics.GasSample(fee, uint64(env.Response.GasUsed), uint64(env.Response.GasWanted), ts)
		if !ok {
			return
		}
		mu.Lock()
		samples = append(samples, sample)
		mu.Unlock()
	})
	return samples
}

// SampleGasUsage looks up the first transactions of the first blocks and returns their gas
// accounting for network statistics.
func (a *Aggregator) SampleGasUsage(ctx context.Context, blocks []models.BlockInfo) []models.TxGasUsage {
	var mu sync.Mutex
	usage := make([]models.TxGasUsage, 0, usageSampleBlocks*usageSampleTxs)
	a.lookupTxs(ctx, blocks, usageSampleBlocks, usageSampleTxs, "sample_gas_usage", func(_ models.BlockInfo, env *rpc.TxEnvelope) {
		if env.Response == nil {
			return
		}
		mu.Lock()
		usage = append(usage, models.TxGasUsage{
			Hash:      env.Response.TxHash,
			GasUsed:   uint64(env.Response.GasUsed),
			GasWanted: uint64(env.Response.GasWanted),
		})
		mu.Unlock()
	})
	return usage
}

type txLookup struct {
	block models.BlockInfo
	hash  string
}

// lookupTxs fetches the first perBlock transactions of the first maxBlocks blocks in batches of
// BatchSize, one batch at a time, and hands every successful lookup to fn.
func (a *Aggregator) lookupTxs(ctx context.Context, blocks []models.BlockInfo, maxBlocks, perBlock int, op string, fn func(models.BlockInfo, *rpc.TxEnvelope)) {
	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}

	var lookups []txLookup
	for _, block := range blocks {
		raws := block.RawTxs
		if len(raws) > perBlock {
			raws = raws[:perBlock]
		}
		for _, raw := range raws {
			hash, err := rpc.TxHash(raw)
			if err != nil {
				a.logger.Debug("skipping undecodable tx envelope",
					zap.Uint64("height", block.Height),
					zap.Error(err))
				continue
			}
			lookups = append(lookups, txLookup{block: block, hash: hash})
		}
	}

	for start := 0; start < len(lookups); start += BatchSize {
		if ctx.Err() != nil {
			return
		}
		end := min(start+BatchSize, len(lookups))
		group := a.pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		for _, l := range lookups[start:end] {
			group.Submit(func() {
				if groupCtx.Err() != nil {
					return
				}
				env, err := a.client.TxByHash(groupCtx, l.hash)
				if err != nil {
					a.logger.Debug("tx lookup failed",
						zap.String("op", op),
						zap.String("hash", l.hash),
						zap.Error(err))
					return
				}
				fn(l.block, env)
			})
		}
		a.waitGroup(group, op)
	}
}
