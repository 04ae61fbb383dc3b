package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/store"
	"github.com/lumera-stats/lumerawatch/pkg/wallet"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyTracked is returned when adding an address that is already tracked.
	ErrAlreadyTracked = errors.New("wallet already tracked")
	// ErrNotTracked is returned for operations on an address that is not tracked.
	ErrNotTracked = errors.New("wallet not tracked")
	// ErrEmptyAddress is returned when adding a blank address.
	ErrEmptyAddress = errors.New("wallet address is empty")
)

// SessionWalletName is the name given to the auto-tracked connected wallet.
const SessionWalletName = "My Wallet"

// Tracker maintains the tracked wallet list. Every operation loads the full list, mutates it and
// saves it back; operations are serialized so concurrent callers never interleave partial writes.
type Tracker struct {
	balances rpc.BalanceFetcher
	wallets  *store.WalletStore
	pool     pond.Pool
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// NewTracker creates a Tracker refreshing balances on a pool of the given size.
func NewTracker(balances rpc.BalanceFetcher, wallets *store.WalletStore, logger *zap.Logger, workers int) *Tracker {
	if workers <= 0 {
		workers = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		balances: balances,
		wallets:  wallets,
		pool:     pond.NewPool(workers, pond.WithQueueSize(workers*4)),
		logger:   logger,
		now:      time.Now,
	}
}

// Close stops the refresh pool.
func (t *Tracker) Close() {
	t.pool.StopAndWait()
}

// List returns the tracked wallets in insertion order.
func (t *Tracker) List(ctx context.Context) ([]models.TrackedWallet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wallets.Load(ctx)
}

func indexOf(wallets []models.TrackedWallet, address string) int {
	for i := range wallets {
		if wallets[i].Address == address {
			return i
		}
	}
	return -1
}

func copyCoins(coins []models.Coin) []models.Coin {
	out := make([]models.Coin, len(coins))
	copy(out, coins)
	return out
}

// Add starts tracking address with its current balances as baseline. A blank name becomes
// "Wallet N". The balance fetch failure, if any, is returned and nothing is stored.
func (t *Tracker) Add(ctx context.Context, address, name string) (models.TrackedWallet, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.TrackedWallet{}, ErrEmptyAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wallets, err := t.wallets.Load(ctx)
	if err != nil {
		return models.TrackedWallet{}, err
	}
	if indexOf(wallets, address) >= 0 {
		return models.TrackedWallet{}, fmt.Errorf("%s: %w", address, ErrAlreadyTracked)
	}

	coins, err := t.balances.Balances(ctx, address)
	if err != nil {
		return models.TrackedWallet{}, fmt.Errorf("fetch balances for %s: %w", address, err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Wallet %d", len(wallets)+1)
	}
	now := t.now().UTC()
	w := models.TrackedWallet{
		Address:          address,
		Name:             name,
		StartingBalances: copyCoins(coins),
		CurrentBalances:  copyCoins(coins),
		StartDate:        now,
		LastUpdated:      now,
	}
	if err := t.wallets.Save(ctx, append(wallets, w)); err != nil {
		return models.TrackedWallet{}, err
	}
	t.logger.Info("tracking wallet",
		zap.String("address", address),
		zap.String("name", name))
	return w, nil
}

// Remove stops tracking address.
func (t *Tracker) Remove(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	t.mu.Lock()
	defer t.mu.Unlock()

	wallets, err := t.wallets.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(wallets, address)
	if i < 0 {
		return fmt.Errorf("%s: %w", address, ErrNotTracked)
	}
	return t.wallets.Save(ctx, append(wallets[:i], wallets[i+1:]...))
}

// ResetBaseline makes the wallet's current balances its new starting point.
func (t *Tracker) ResetBaseline(ctx context.Context, address string) (models.TrackedWallet, error) {
	address = strings.TrimSpace(address)
	t.mu.Lock()
	defer t.mu.Unlock()

	wallets, err := t.wallets.Load(ctx)
	if err != nil {
		return models.TrackedWallet{}, err
	}
	i := indexOf(wallets, address)
	if i < 0 {
		return models.TrackedWallet{}, fmt.Errorf("%s: %w", address, ErrNotTracked)
	}
	wallets[i].StartingBalances = copyCoins(wallets[i].CurrentBalances)
	wallets[i].StartDate = t.now().UTC()
	if err := t.wallets.Save(ctx, wallets); err != nil {
		return models.TrackedWallet{}, err
	}
	return wallets[i], nil
}

// Refresh fetches the current balances of one wallet. On fetch failure the stored wallet is left
// unchanged and the error returned.
func (t *Tracker) Refresh(ctx context.Context, address string) (models.TrackedWallet, error) {
	address = strings.TrimSpace(address)
	t.mu.Lock()
	defer t.mu.Unlock()

	wallets, err := t.wallets.Load(ctx)
	if err != nil {
		return models.TrackedWallet{}, err
	}
	i := indexOf(wallets, address)
	if i < 0 {
		return models.TrackedWallet{}, fmt.Errorf("%s: %w", address, ErrNotTracked)
	}
	coins, err := t.balances.Balances(ctx, address)
	if err != nil {
		return models.TrackedWallet{}, fmt.Errorf("fetch balances for %s: %w", address, err)
	}
	wallets[i].CurrentBalances = coins
	wallets[i].LastUpdated = t.now().UTC()
	if err := t.wallets.Save(ctx, wallets); err != nil {
		return models.TrackedWallet{}, err
	}
	return wallets[i], nil
}

// RefreshAll fetches every wallet's balances concurrently, waits for all of them and saves once.
// A wallet whose fetch fails keeps its previous balances.
func (t *Tracker) RefreshAll(ctx context.Context) ([]models.TrackedWallet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wallets, err := t.wallets.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return wallets, nil
	}

	group := t.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i := range wallets {
		group.Submit(func() {
			if groupCtx.Err() != nil {
				return
			}
			coins, err := t.balances.Balances(groupCtx, wallets[i].Address)
			if err != nil {
				t.logger.Warn("wallet refresh failed, keeping previous balances",
					zap.String("address", wallets[i].Address),
					zap.Error(err))
				return
			}
			wallets[i].CurrentBalances = coins
			wallets[i].LastUpdated = t.now().UTC()
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		t.logger.Warn("parallel wallet refresh encountered error", zap.Error(err))
	}

	if err := t.wallets.Save(ctx, wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// EnsureSession tracks the connected wallet as "My Wallet" when nothing is tracked yet.
// It reports whether a wallet was added.
func (t *Tracker) EnsureSession(ctx context.Context, session wallet.Session) (bool, error) {
	if session == nil || !session.IsConnected() || session.Address() == "" {
		return false, nil
	}
	wallets, err := t.List(ctx)
	if err != nil {
		return false, err
	}
	if len(wallets) > 0 {
		return false, nil
	}
	if _, err := t.Add(ctx, session.Address(), SessionWalletName); err != nil {
		if errors.Is(err, ErrAlreadyTracked) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Reports builds the profit/loss report of every tracked wallet.
func (t *Tracker) Reports(ctx context.Context) ([]Report, error) {
	wallets, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Report, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, BuildReport(w))
	}
	return out, nil
}
