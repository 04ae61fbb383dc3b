package monitor_test

import (
	"context"
	"errors"
	"sync"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
)

var errNotStubbed = errors.New("not stubbed")

type fakeClient struct {
	latestHeight  func(ctx context.Context) (uint64, error)
	blockByHeight func(ctx context.Context, height uint64) (*models.BlockInfo, error)
	txsByEvent    func(ctx context.Context, event string, limit int) ([]rpc.TxEnvelope, error)
	txByHash      func(ctx context.Context, hash string) (*rpc.TxEnvelope, error)
	balances      func(ctx context.Context, address string) ([]models.Coin, error)
	delegations   func(ctx context.Context, address string) ([]models.Delegation, error)
	validators    func(ctx context.Context) ([]models.Validator, error)
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
	if f.balances == nil {
		return nil, errNotStubbed
	}
	return f.balances(ctx, address)
}

func (f *fakeClient) Delegations(ctx context.Context, address string) ([]models.Delegation, error) {
	if f.delegations == nil {
		return nil, errNotStubbed
	}
	return f.delegations(ctx, address)
}

func (f *fakeClient) Validators(ctx context.Context) ([]models.Validator, error) {
	if f.validators == nil {
		return nil, errNotStubbed
	}
	return f.validators(ctx)
}

func (f *fakeClient) Status(ctx context.Context) (*rpc.NodeStatus, error) {
	return nil, errNotStubbed
}

var _ rpc.Client = (*fakeClient)(nil)

// recordingPublisher keeps every published message.
type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{messages: map[string][][]byte{}}
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, message interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, _ := message.([]byte)
	p.messages[channel] = append(p.messages[channel], b)
}

func (p *recordingPublisher) count(channel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[channel])
}

func (p *recordingPublisher) last(channel string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := p.messages[channel]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}
