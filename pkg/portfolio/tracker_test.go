package portfolio_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/store"
	"github.com/lumera-stats/lumerawatch/pkg/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeBalances struct {
	mu       sync.Mutex
	balances map[string][]models.Coin
	failing  map[string]bool
	calls    int
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: map[string][]models.Coin{}, failing: map[string]bool{}}
}

func (f *fakeBalances) set(address, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[address] = []models.Coin{{Denom: "ulume", Amount: amount}}
}

func (f *fakeBalances) fail(address string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[address] = fail
}

func (f *fakeBalances) Balances(_ context.Context, address string) ([]models.Coin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[address] {
		return nil, &rpc.GatewayError{Kind: rpc.KindTimeout}
	}
	return append([]models.Coin(nil), f.balances[address]...), nil
}

func newTestTracker(t *testing.T) (*portfolio.Tracker, *fakeBalances, *store.WalletStore) {
	balances := newFakeBalances()
	wallets := store.NewWalletStore(store.NewMemoryKV(), zaptest.NewLogger(t))
	tracker := portfolio.NewTracker(balances, wallets, zaptest.NewLogger(t), 4)
	t.Cleanup(tracker.Close)
	return tracker, balances, wallets
}

func TestTracker_AddAndList(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1a", "1000000")
	balances.set("lumera1b", "5")

	w, err := tracker.Add(ctx, "  lumera1a ", "")
	require.NoError(t, err)
	assert.Equal(t, "lumera1a", w.Address)
	assert.Equal(t, "Wallet 1", w.Name)
	assert.Equal(t, w.StartingBalances, w.CurrentBalances)
	assert.False(t, w.StartDate.IsZero())

	w, err = tracker.Add(ctx, "lumera1b", "Savings")
	require.NoError(t, err)
	assert.Equal(t, "Savings", w.Name)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "lumera1a", list[0].Address)
	assert.Equal(t, "lumera1b", list[1].Address)
}

func TestTracker_AddRejectsDuplicatesAndBlank(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1a", "1")

	_, err := tracker.Add(ctx, "lumera1a", "")
	require.NoError(t, err)

	_, err = tracker.Add(ctx, "lumera1a ", "again")
	assert.ErrorIs(t, err, portfolio.ErrAlreadyTracked)

	_, err = tracker.Add(ctx, "   ", "")
	assert.ErrorIs(t, err, portfolio.ErrEmptyAddress)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTracker_AddSurfacesBalanceFailure(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.fail("lumera1a", true)

	_, err := tracker.Add(ctx, "lumera1a", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, rpc.ErrTimeout)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTracker_RefreshAllKeepsFailedWallets(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1a", "1000000")
	balances.set("lumera1b", "2000000")
	_, err := tracker.Add(ctx, "lumera1a", "")
	require.NoError(t, err)
	_, err = tracker.Add(ctx, "lumera1b", "")
	require.NoError(t, err)

	balances.set("lumera1a", "1200000")
	balances.set("lumera1b", "9999999")
	balances.fail("lumera1b", true)

	refreshed, err := tracker.RefreshAll(ctx)
	require.NoError(t, err)
	require.Len(t, refreshed, 2)
	assert.Equal(t, "1200000", refreshed[0].CurrentBalances[0].Amount)
	assert.Equal(t, "2000000", refreshed[1].CurrentBalances[0].Amount)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1200000", list[0].CurrentBalances[0].Amount)
	assert.Equal(t, "2000000", list[1].CurrentBalances[0].Amount)

	report := portfolio.BuildReport(list[0])
	assert.Equal(t, "+0.200000", report.TotalDifference)
	assert.Equal(t, "+20.00%", report.TotalPercent)
}

func TestTracker_RefreshAndReset(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1a", "1000000")
	added, err := tracker.Add(ctx, "lumera1a", "")
	require.NoError(t, err)

	balances.set("lumera1a", "1500000")
	w, err := tracker.Refresh(ctx, "lumera1a")
	require.NoError(t, err)
	assert.Equal(t, "1500000", w.CurrentBalances[0].Amount)
	assert.Equal(t, "1000000", w.StartingBalances[0].Amount)

	w, err = tracker.ResetBaseline(ctx, "lumera1a")
	require.NoError(t, err)
	assert.Equal(t, "1500000", w.StartingBalances[0].Amount)
	assert.False(t, w.StartDate.Before(added.StartDate))
	assert.Equal(t, "+0.00%", portfolio.BuildReport(w).TotalPercent)

	balances.fail("lumera1a", true)
	_, err = tracker.Refresh(ctx, "lumera1a")
	assert.ErrorIs(t, err, rpc.ErrTimeout)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1500000", list[0].CurrentBalances[0].Amount)
}

func TestTracker_UnknownWallet(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTestTracker(t)

	_, err := tracker.Refresh(ctx, "lumera1x")
	assert.ErrorIs(t, err, portfolio.ErrNotTracked)
	_, err = tracker.ResetBaseline(ctx, "lumera1x")
	assert.ErrorIs(t, err, portfolio.ErrNotTracked)
	assert.ErrorIs(t, tracker.Remove(ctx, "lumera1x"), portfolio.ErrNotTracked)
}

func TestTracker_Remove(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	for _, addr := range []string{"lumera1a", "lumera1b", "lumera1c"} {
		balances.set(addr, "1")
		_, err := tracker.Add(ctx, addr, "")
		require.NoError(t, err)
	}

	require.NoError(t, tracker.Remove(ctx, "lumera1b"))

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "lumera1a", list[0].Address)
	assert.Equal(t, "lumera1c", list[1].Address)
}

func TestTracker_EnsureSession(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1me", "42")

	session := wallet.NewStaticSession("lumera1me")

	added, err := tracker.EnsureSession(ctx, session)
	require.NoError(t, err)
	assert.False(t, added, "disconnected session must not be tracked")

	require.NoError(t, session.Connect(ctx))
	added, err = tracker.EnsureSession(ctx, session)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tracker.EnsureSession(ctx, session)
	require.NoError(t, err)
	assert.False(t, added)

	list, err := tracker.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, portfolio.SessionWalletName, list[0].Name)
}

func TestTracker_StorageFailure(t *testing.T) {
	boom := errors.New("kv down")
	wallets := store.NewWalletStore(brokenKV{err: boom}, zaptest.NewLogger(t))
	tracker := portfolio.NewTracker(newFakeBalances(), wallets, zaptest.NewLogger(t), 2)
	t.Cleanup(tracker.Close)

	_, err := tracker.RefreshAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

type brokenKV struct{ err error }

func (b brokenKV) Get(context.Context, string) (string, bool, error) { return "", false, b.err }
func (b brokenKV) Set(context.Context, string, string) error         { return b.err }

func TestTracker_AddressesAreTrimmed(t *testing.T) {
	ctx := context.Background()
	tracker, balances, _ := newTestTracker(t)
	balances.set("lumera1a", "1000000")
	_, err := tracker.Add(ctx, "  lumera1a ", "")
	require.NoError(t, err)

	balances.set("lumera1a", "1100000")
	w, err := tracker.Refresh(ctx, " lumera1a")
	require.NoError(t, err)
	assert.Equal(t, "1100000", w.CurrentBalances[0].Amount)

	w, err = tracker.ResetBaseline(ctx, "lumera1a\t")
	require.NoError(t, err)
	assert.Equal(t, "1100000", w.StartingBalances[0].Amount)

	require.NoError(t, tracker.Remove(ctx, " lumera1a "))
	list, err := tracker.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
