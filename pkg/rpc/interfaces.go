package rpc

import (
	"context"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// Client captures the gateway calls used by the aggregator, the monitor and the portfolio tracker.
// Every failure is a *GatewayError, except the aggregate ErrNoValidatorsFound.
type Client interface {
	LatestHeight(ctx context.Context) (uint64, error)
	LatestBlock(ctx context.Context) (*models.BlockInfo, error)
	BlockByHeight(ctx context.Context, height uint64) (*models.BlockInfo, error)
	TxsByEvent(ctx context.Context, event string, limit int) ([]TxEnvelope, error)
	TxByHash(ctx context.Context, hash string) (*TxEnvelope, error)
	Balances(ctx context.Context, address string) ([]models.Coin, error)
	Delegations(ctx context.Context, address string) ([]models.Delegation, error)
	Validators(ctx context.Context) ([]models.Validator, error)
	Status(ctx context.Context) (*NodeStatus, error)
}

// BalanceFetcher is the narrow capability needed by the profit/loss tracker.
type BalanceFetcher interface {
	Balances(ctx context.Context, address string) ([]models.Coin, error)
}

var _ Client = (*HTTPClient)(nil)
