package aggregator

import (
	"context"
	"fmt"
	"sort"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"go.uber.org/zap"
)

// SentQuery and ReceivedQuery are the event filters for an address history.
const (
	SentQuery     = "message.sender='%s'"
	ReceivedQuery = "transfer.recipient='%s'"
)

// FetchTransactionsForAddress returns the recent sent and received transactions of address.
// Both queries run concurrently and are settled independently: a failing side is logged and the
// other side is still used. Records are deduplicated by hash (the received side wins) and sorted
// by height descending. When nothing could be fetched the result is empty.
func (a *Aggregator) FetchTransactionsForAddress(ctx context.Context, address string) []models.TransactionDetail {
	queries := []string{
		fmt.Sprintf(SentQuery, address),
		fmt.Sprintf(ReceivedQuery, address),
	}
	results := make([][]rpc.TxEnvelope, len(queries))

	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, q := range queries {
		group.Submit(func() {
			if groupCtx.Err() != nil {
				return
			}
			envs, err := a.client.TxsByEvent(groupCtx, q, HistoryLimit)
			if err != nil {
				a.logger.Warn("transaction history query failed",
					zap.String("address", address),
					zap.String("query", q),
					zap.Error(err))
				return
			}
			results[i] = envs
		})
	}
	a.waitGroup(group, "fetch_address_history")

	now := a.now()
	index := make(map[string]int)
	txs := make([]models.TransactionDetail, 0)
	for _, envs := range results {
		for _, env := range envs {
			detail, err := rpc.DecodeTransaction(env, now)
			if err != nil {
				a.logger.Debug("skipping undecodable transaction",
					zap.String("address", address),
					zap.Error(err))
				continue
			}
			if i, ok := index[detail.Hash]; ok {
				txs[i] = detail
				continue
			}
			index[detail.Hash] = len(txs)
			txs = append(txs, detail)
		}
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Height > txs[j].Height })
	if len(txs) == 0 {
		a.logger.Debug("no transactions for address",
			zap.String("address", address),
			zap.NamedError("reason", rpc.ErrNoTransactionsFound))
	}
	return txs
}
