package controller

import (
	"context"
	"errors"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
)

var errNotStubbed = errors.New("not stubbed")

type fakeClient struct {
	latestHeight  func(ctx context.Context) (uint64, error)
	blockByHeight func(ctx context.Context, height uint64) (*models.BlockInfo, error)
	txByHash      func(ctx context.Context, hash string) (*rpc.TxEnvelope, error)
	balances      func(ctx context.Context, address string) ([]models.Coin, error)
	validators    func(ctx context.Context) ([]models.Validator, error)
}

func (f *fakeClient) LatestHeight(ctx context.Context) (uint64, error) {
	if f.latestHeight == nil {
		return 0, &rpc.GatewayError{Kind: rpc.KindTimeout}
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
	return nil, nil
}

func (f *fakeClient) TxByHash(ctx context.Context, hash string) (*rpc.TxEnvelope, error) {
	if f.txByHash == nil {
		return nil, &rpc.GatewayError{Kind: rpc.KindHTTP, Status: 404}
	}
	return f.txByHash(ctx, hash)
}

func (f *fakeClient) Balances(ctx context.Context, address string) ([]models.Coin, error) {
	if f.balances == nil {
		return nil, &rpc.GatewayError{Kind: rpc.KindNetworkUnreachable}
	}
	return f.balances(ctx, address)
}

func (f *fakeClient) Delegations(ctx context.Context, address string) ([]models.Delegation, error) {
	return []models.Delegation{}, nil
}

func (f *fakeClient) Validators(ctx context.Context) ([]models.Validator, error) {
	if f.validators == nil {
		return nil, errors.Join(rpc.ErrNoValidatorsFound, errNotStubbed)
	}
	return f.validators(ctx)
}

func (f *fakeClient) Status(ctx context.Context) (*rpc.NodeStatus, error) {
	return nil, errNotStubbed
}

var _ rpc.Client = (*fakeClient)(nil)
