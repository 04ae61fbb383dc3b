package metrics

import (
	"math"
	"strconv"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/store"
	"github.com/lumera-stats/lumerawatch/pkg/utils"
)

// Fallback gas price levels reported before any valid sample exists. They are placeholders, not
// derived from chain parameters.
const (
	FallbackGasLow     = 0.01
	FallbackGasAverage = 0.025
	FallbackGasHigh    = 0.04
)

const (
	// CurrentWindow is the number of most recent samples behind the current price levels.
	CurrentWindow = 50
	// HistoryReturned caps the history carried in a GasFeeStats snapshot.
	HistoryReturned = 100
	// ChangeWindow is the number of samples compared on each side of the price change.
	ChangeWindow = 10

	pricePlaces = 6
)

// FallbackLevels returns the documented placeholder levels.
func FallbackLevels() models.GasPriceLevels {
	return models.GasPriceLevels{Low: FallbackGasLow, Average: FallbackGasAverage, High: FallbackGasHigh}
}

// DefaultGasFeeStats is the snapshot served when nothing could be sampled or loaded.
func DefaultGasFeeStats(now time.Time) models.GasFeeStats {
	return models.GasFeeStats{
		Current:    FallbackLevels(),
		History24h: []models.GasPriceData{},
		Min24h:     FallbackGasLow,
		Max24h:     FallbackGasHigh,
		Avg24h:     FallbackGasAverage,
		UpdatedAt:  now,
	}
}

// GasSample turns a transaction's first fee coin and gas accounting into a price sample.
// Samples with no gas used or a non-positive price are rejected.
func GasSample(fee models.Coin, gasUsed, gasWanted uint64, ts time.Time) (models.GasPriceData, bool) {
	if gasUsed == 0 {
		return models.GasPriceData{}, false
	}
	amount, err := strconv.ParseFloat(fee.Amount, 64)
	if err != nil {
		return models.GasPriceData{}, false
	}
	price := amount / float64(gasUsed)
	if !(price > 0) || math.IsInf(price, 0) {
		return models.GasPriceData{}, false
	}
	return models.GasPriceData{
		Timestamp: ts,
		GasPrice:  price,
		GasUsed:   gasUsed,
		GasWanted: gasWanted,
	}, true
}

// validPrices returns the positive prices of samples, in order.
func validPrices(samples []models.GasPriceData) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.GasPrice > 0 && !math.IsInf(s.GasPrice, 0) {
			out = append(out, s.GasPrice)
		}
	}
	return out
}

func minMaxAvg(prices []float64) (lo, hi, avg float64) {
	lo, hi = prices[0], prices[0]
	var sum float64
	for _, p := range prices {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
		sum += p
	}
	return lo, hi, sum / float64(len(prices))
}

// CurrentLevels computes low/average/high over the CurrentWindow most recent valid samples,
// falling back to the placeholder levels when there are none.
func CurrentLevels(history []models.GasPriceData) models.GasPriceLevels {
	prices := validPrices(history)
	if len(prices) > CurrentWindow {
		prices = prices[len(prices)-CurrentWindow:]
	}
	if len(prices) == 0 {
		return FallbackLevels()
	}
	lo, hi, avg := minMaxAvg(prices)
	return models.GasPriceLevels{
		Low:     utils.Round(lo, pricePlaces),
		Average: utils.Round(avg, pricePlaces),
		High:    utils.Round(hi, pricePlaces),
	}
}

// ComputeGasFeeStats merges new samples into the persisted window and summarizes it.
// The 24h aggregates fall back to the current levels when the window holds no valid sample.
// The returned history is restricted to the rolling window and capped at HistoryReturned.
func ComputeGasFeeStats(existing, incoming []models.GasPriceData, now time.Time) models.GasFeeStats {
	history := store.WithinWindow(store.MergeGasHistory(existing, incoming), now)
	current := CurrentLevels(history)

	stats := models.GasFeeStats{
		Current:     current,
		History24h:  store.Newest(history, HistoryReturned),
		Min24h:      current.Low,
		Max24h:      current.High,
		Avg24h:      current.Average,
		PriceChange: PriceChange(history),
		Hourly:      HourlySeries(history, now),
		UpdatedAt:   now,
	}
	if prices := validPrices(history); len(prices) > 0 {
		lo, hi, avg := minMaxAvg(prices)
		stats.Min24h = utils.Round(lo, pricePlaces)
		stats.Max24h = utils.Round(hi, pricePlaces)
		stats.Avg24h = utils.Round(avg, pricePlaces)
	}
	return stats
}

// PriceChange compares the mean of the last ChangeWindow valid samples with the mean of the
// ChangeWindow before them, in percent. It is nil until both windows are full.
func PriceChange(history []models.GasPriceData) *float64 {
	prices := validPrices(history)
	if len(prices) < 2*ChangeWindow {
		return nil
	}
	recent := prices[len(prices)-ChangeWindow:]
	previous := prices[len(prices)-2*ChangeWindow : len(prices)-ChangeWindow]
	_, _, recentAvg := minMaxAvg(recent)
	_, _, previousAvg := minMaxAvg(previous)
	change := utils.Round((recentAvg-previousAvg)/previousAvg*100, 2)
	return &change
}

// HourlySeries averages the valid samples of the last 24 hours into hourly buckets, hour 0
// starting 24h before now. Empty hours are omitted.
func HourlySeries(history []models.GasPriceData, now time.Time) []models.HourlyGasPoint {
	var sums, counts [24]float64
	start := now.Add(-24 * time.Hour)
	for _, s := range history {
		if !(s.GasPrice > 0) || s.Timestamp.Before(start) || s.Timestamp.After(now) {
			continue
		}
		hour := int(s.Timestamp.Sub(start) / time.Hour)
		if hour > 23 {
			hour = 23
		}
		sums[hour] += s.GasPrice
		counts[hour]++
	}

	out := make([]models.HourlyGasPoint, 0, 24)
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		out = append(out, models.HourlyGasPoint{Hour: h, Value: utils.Round(sums[h]/counts[h], pricePlaces)})
	}
	return out
}
