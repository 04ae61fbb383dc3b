package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"go.uber.org/zap"
)

const (
	// GasHistoryKey is the storage key of the rolling gas price history.
	GasHistoryKey = "gas_fee_history_24h"
	// MaxGasHistory caps the number of persisted samples; the oldest are dropped first.
	MaxGasHistory = 100
	// GasHistoryWindow is the age past which samples are discarded on load.
	GasHistoryWindow = 24 * time.Hour
)

// GasHistory persists the rolling gas price window.
type GasHistory struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time
}

// NewGasHistory creates a GasHistory backed by kv.
func NewGasHistory(kv KV, logger *zap.Logger) *GasHistory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GasHistory{kv: kv, logger: logger, now: time.Now}
}

// Load returns the persisted samples younger than GasHistoryWindow, ascending by timestamp.
// Malformed entries are dropped; an unreadable record degrades to an empty history.
func (h *GasHistory) Load(ctx context.Context) []models.GasPriceData {
	raw, ok, err := h.kv.Get(ctx, GasHistoryKey)
	if err != nil {
		h.logger.Warn("failed to read gas history", zap.Error(err))
		return []models.GasPriceData{}
	}
	if !ok || raw == "" {
		return []models.GasPriceData{}
	}
	history, err := decodeGasHistory(raw)
	if err != nil {
		h.logger.Warn("discarding unreadable gas history", zap.Error(err))
		return []models.GasPriceData{}
	}
	return WithinWindow(history, h.now())
}

// Save persists the newest MaxGasHistory samples of history.
func (h *GasHistory) Save(ctx context.Context, history []models.GasPriceData) error {
	history = Newest(history, MaxGasHistory)
	bz, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode gas history: %w", err)
	}
	if err := h.kv.Set(ctx, GasHistoryKey, string(bz)); err != nil {
		return fmt.Errorf("save gas history: %w", err)
	}
	return nil
}

// decodeGasHistory parses the stored array entry by entry so one bad sample does not lose the rest.
func decodeGasHistory(raw string) ([]models.GasPriceData, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	out := make([]models.GasPriceData, 0, len(entries))
	for _, entry := range entries {
		var sample models.GasPriceData
		if err := json.Unmarshal(entry, &sample); err != nil {
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

// MergeGasHistory appends incoming to existing and sorts ascending by timestamp. Samples are not
// deduplicated: two samples with the same timestamp are both kept.
func MergeGasHistory(existing, incoming []models.GasPriceData) []models.GasPriceData {
	merged := make([]models.GasPriceData, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// WithinWindow keeps the samples with timestamp >= now-GasHistoryWindow, preserving order.
func WithinWindow(history []models.GasPriceData, now time.Time) []models.GasPriceData {
	cutoff := now.Add(-GasHistoryWindow)
	out := make([]models.GasPriceData, 0, len(history))
	for _, s := range history {
		if s.Timestamp.IsZero() || s.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Newest returns the last n samples of history.
func Newest(history []models.GasPriceData, n int) []models.GasPriceData {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
