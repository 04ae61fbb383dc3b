package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGasHistory(t *testing.T, kv KV) *GasHistory {
	h := NewGasHistory(kv, zaptest.NewLogger(t))
	h.now = func() time.Time { return testNow }
	return h
}

func sample(ago time.Duration, price float64) models.GasPriceData {
	return models.GasPriceData{Timestamp: testNow.Add(-ago), GasPrice: price, GasUsed: 100000, GasWanted: 120000}
}

func TestGasHistory_LoadMissingKey(t *testing.T) {
	h := newTestGasHistory(t, NewMemoryKV())
	history := h.Load(context.Background())
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestGasHistory_LoadFiltersWindow(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	h := newTestGasHistory(t, kv)

	require.NoError(t, h.Save(ctx, []models.GasPriceData{
		sample(30*time.Hour, 0.5),
		sample(24*time.Hour, 0.02),
		sample(time.Hour, 0.03),
	}))

	history := h.Load(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, 0.02, history[0].GasPrice)
	assert.Equal(t, 0.03, history[1].GasPrice)
	for _, s := range history {
		assert.False(t, s.Timestamp.Before(testNow.Add(-GasHistoryWindow)))
	}
}

func TestGasHistory_LoadDropsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, GasHistoryKey, `[
		{"timestamp":"2025-06-01T11:00:00Z","gasPrice":0.025,"gasUsed":1,"gasWanted":2},
		{"timestamp":"yesterday","gasPrice":0.1},
		{"gasPrice":0.2},
		"garbage"
	]`))

	history := newTestGasHistory(t, kv).Load(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, 0.025, history[0].GasPrice)
}

func TestGasHistory_LoadUnparseableDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, GasHistoryKey, `{not json`))

	history := newTestGasHistory(t, kv).Load(ctx)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestGasHistory_LoadSaveIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	h := newTestGasHistory(t, kv)

	require.NoError(t, h.Save(ctx, []models.GasPriceData{
		sample(3*time.Hour, 0.01),
		sample(2*time.Hour, 0.02),
		sample(time.Hour, 0.03),
	}))
	before, _, err := kv.Get(ctx, GasHistoryKey)
	require.NoError(t, err)

	require.NoError(t, h.Save(ctx, h.Load(ctx)))
	after, _, err := kv.Get(ctx, GasHistoryKey)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestGasHistory_LoadSaveDropsOnlyExpired(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	h := newTestGasHistory(t, kv)

	require.NoError(t, h.Save(ctx, []models.GasPriceData{
		sample(48*time.Hour, 0.01),
		sample(time.Hour, 0.03),
	}))
	require.NoError(t, h.Save(ctx, h.Load(ctx)))

	raw, _, err := kv.Get(ctx, GasHistoryKey)
	require.NoError(t, err)
	var stored []models.GasPriceData
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, 0.03, stored[0].GasPrice)
}

func TestGasHistory_SaveCapsNewest(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	h := newTestGasHistory(t, kv)

	history := make([]models.GasPriceData, 0, 150)
	for i := 150; i > 0; i-- {
		history = append(history, sample(time.Duration(i)*time.Minute, float64(i)))
	}
	require.NoError(t, h.Save(ctx, history))

	loaded := h.Load(ctx)
	require.Len(t, loaded, MaxGasHistory)
	assert.Equal(t, float64(100), loaded[0].GasPrice)
	assert.Equal(t, float64(1), loaded[len(loaded)-1].GasPrice)
}

func TestMergeGasHistory(t *testing.T) {
	existing := []models.GasPriceData{sample(3*time.Hour, 0.01), sample(time.Hour, 0.03)}
	incoming := []models.GasPriceData{sample(2*time.Hour, 0.02), sample(time.Hour, 0.04)}

	merged := MergeGasHistory(existing, incoming)
	require.Len(t, merged, 4)
	assert.Equal(t, []float64{0.01, 0.02, 0.03, 0.04}, []float64{
		merged[0].GasPrice, merged[1].GasPrice, merged[2].GasPrice, merged[3].GasPrice,
	})
	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].Timestamp.Before(merged[i-1].Timestamp))
	}
}

// Samples sharing a timestamp are all kept; the merge never deduplicates by content.
func TestMergeGasHistory_KeepsDuplicateTimestamps(t *testing.T) {
	dup := sample(time.Hour, 0.02)
	merged := MergeGasHistory([]models.GasPriceData{dup}, []models.GasPriceData{dup, dup})
	assert.Len(t, merged, 3)
}

func TestMergeThenLoad_RollingWindow(t *testing.T) {
	ctx := context.Background()
	h := newTestGasHistory(t, NewMemoryKV())

	merged := MergeGasHistory(
		[]models.GasPriceData{sample(25*time.Hour, 0.01), sample(23*time.Hour, 0.02)},
		[]models.GasPriceData{sample(72*time.Hour, 0.05), sample(time.Minute, 0.03)},
	)
	require.NoError(t, h.Save(ctx, merged))

	cutoff := testNow.Add(-GasHistoryWindow)
	loaded := h.Load(ctx)
	require.Len(t, loaded, 2)
	for _, s := range loaded {
		assert.False(t, s.Timestamp.Before(cutoff))
	}
}
