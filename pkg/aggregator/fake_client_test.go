package aggregator_test

import (
	"context"
	"errors"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
)

var errNotStubbed = errors.New("not stubbed")

// fakeClient is an rpc.Client whose calls are served by optional stub functions.
type fakeClient struct {
	latestHeight  func(ctx context.Context) (uint64, error)
	blockByHeight func(ctx context.Context, height uint64) (*models.BlockInfo, error)
	txsByEvent    func(ctx context.Context, event string, limit int) ([]rpc.TxEnvelope, error)
	txByHash      func(ctx context.Context, hash string) (*rpc.TxEnvelope, error)
}

func (f *fakeClient) LatestHeight(ctx context.Context) (uint64, error) {
	if f.latestHeight == nil {
		return 0, errNotStubbed
	}
	return f.latestHeight(ctx)
}

func (f *fakeClient) LatestBlock(ctx context.Context) (*models.BlockInfo, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) BlockByHeight(ctx context.Context, height uint64) (*models.BlockInfo, error) {
	if f.blockByHeight == nil {
		return nil, errNotStubbed
	}
	return f.blockByHeight(ctx, height)
}

func (f *fakeClient) TxsByEvent(ctx context.Context, event string, limit int) ([]rpc.TxEnvelope, error) {
	if f.txsByEvent == nil {
		return nil, errNotStubbed
	}
	return f.txsByEvent(ctx, event, limit)
}

func (f *fakeClient) TxByHash(ctx context.Context, hash string) (*rpc.TxEnvelope, error) {
	if f.txByHash == nil {
		return nil, errNotStubbed
	}
	return f.txByHash(ctx, hash)
}

func (f *fakeClient) Balances(ctx context.Context, address string) ([]models.Coin, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) Delegations(ctx context.Context, address string) ([]models.Delegation, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) Validators(ctx context.Context) ([]models.Validator, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) Status(ctx context.Context) (*rpc.NodeStatus, error) {
	return nil, errNotStubbed
}

var _ rpc.Client = (*fakeClient)(nil)
