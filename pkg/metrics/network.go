package metrics

import (
	"math"
	"sort"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/utils"
)

// DegradedBlockTime is the average block time, in seconds, above which the network is degraded.
const DegradedBlockTime = 10.0

// BlockTime returns the mean interval in seconds between consecutive blocks that carry a valid
// timestamp. Fewer than two valid timestamps give 0.
func BlockTime(blocks []models.BlockInfo) float64 {
	if len(blocks) < 2 {
		return 0
	}
	times := make([]int64, 0, len(blocks))
	for i := range blocks {
		if blocks[i].HasTime() {
			times = append(times, blocks[i].Time.UnixMilli())
		}
	}
	if len(times) < 2 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i] > times[j] })

	var total float64
	for i := 1; i < len(times); i++ {
		total += float64(times[i-1]-times[i]) / 1000
	}
	return total / float64(len(times)-1)
}

// TPS returns totalTxs / (blockTime * blockCount), or 0 when that span is not positive.
func TPS(totalTxs int, blockTime float64, blockCount int) float64 {
	span := blockTime * float64(blockCount)
	if span <= 0 || math.IsNaN(span) {
		return 0
	}
	return float64(totalTxs) / span
}

// Status classifies chain health. Down takes precedence over degraded.
func Status(latestHeight uint64, blockCount int, blockTime, tps float64) models.NetworkStatus {
	switch {
	case blockCount == 0 || latestHeight == 0:
		return models.NetworkDown
	case blockTime > DegradedBlockTime || tps == 0:
		return models.NetworkDegraded
	default:
		return models.NetworkHealthy
	}
}

// ComputeNetworkStats derives block time, throughput, gas averages and health from a window of
// recent blocks and a sample of their transactions' gas accounting. Validator counts are left for
// the caller (see BondedRatio).
func ComputeNetworkStats(latestHeight uint64, blocks []models.BlockInfo, usage []models.TxGasUsage) models.NetworkStats {
	totalTxs := 0
	for i := range blocks {
		totalTxs += blocks[i].NumTxs
	}

	blockTime := BlockTime(blocks)
	tps := TPS(totalTxs, blockTime, len(blocks))

	var gasUsed, gasWanted float64
	for _, u := range usage {
		gasUsed += float64(u.GasUsed)
		gasWanted += float64(u.GasWanted)
	}
	var avgUsed, avgWanted uint64
	if len(usage) > 0 {
		avgUsed = uint64(math.Round(gasUsed / float64(len(usage))))
		avgWanted = uint64(math.Round(gasWanted / float64(len(usage))))
	}

	return models.NetworkStats{
		LatestHeight:      latestHeight,
		BlockTime:         utils.Round(blockTime, 2),
		TPS:               utils.Round(tps, 2),
		AvgGasUsed:        avgUsed,
		AvgGasWanted:      avgWanted,
		TotalTransactions: totalTxs,
		NetworkStatus:     Status(latestHeight, len(blocks), blockTime, tps),
	}
}

// BondedRatio counts the bonded validators of a listing. Both the enum name and its numeric
// value are recognised.
func BondedRatio(validators []models.Validator) (active, total int) {
	for i := range validators {
		if validators[i].Status.IsBonded() {
			active++
		}
	}
	return active, len(validators)
}
