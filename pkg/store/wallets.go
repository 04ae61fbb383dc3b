package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"go.uber.org/zap"
)

// WalletsKey is the storage key of the tracked wallet list.
const WalletsKey = "tracked_wallets_pnl"

// WalletStore persists the whole tracked wallet list as one record. It does not enforce address
// uniqueness; callers do.
type WalletStore struct {
	kv     KV
	logger *zap.Logger
}

// NewWalletStore creates a WalletStore backed by kv.
func NewWalletStore(kv KV, logger *zap.Logger) *WalletStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletStore{kv: kv, logger: logger}
}

// Load returns the stored wallets in their saved order. An unreadable record is logged and treated
// as empty; storage failures are returned.
func (s *WalletStore) Load(ctx context.Context) ([]models.TrackedWallet, error) {
	raw, ok, err := s.kv.Get(ctx, WalletsKey)
	if err != nil {
		return nil, fmt.Errorf("read tracked wallets: %w", err)
	}
	if !ok || raw == "" {
		return []models.TrackedWallet{}, nil
	}
	var wallets []models.TrackedWallet
	if err := json.Unmarshal([]byte(raw), &wallets); err != nil {
		s.logger.Warn("discarding unreadable tracked wallets", zap.Error(err))
		return []models.TrackedWallet{}, nil
	}
	if wallets == nil {
		wallets = []models.TrackedWallet{}
	}
	return wallets, nil
}

// Save replaces the stored list.
func (s *WalletStore) Save(ctx context.Context, wallets []models.TrackedWallet) error {
	if wallets == nil {
		wallets = []models.TrackedWallet{}
	}
	bz, err := json.Marshal(wallets)
	if err != nil {
		return fmt.Errorf("encode tracked wallets: %w", err)
	}
	if err := s.kv.Set(ctx, WalletsKey, string(bz)); err != nil {
		return fmt.Errorf("save tracked wallets: %w", err)
	}
	return nil
}
