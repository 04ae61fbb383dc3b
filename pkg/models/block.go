package models

import "time"

// BlockInfo is a block as returned by the tendermint REST gateway. Blocks are immutable once fetched.
type BlockInfo struct {
	Height       uint64              `json:"height"`
	Hash         string              `json:"hash"`
	Time         time.Time           `json:"time"`
	NumTxs       int                 `json:"num_txs"`
	Proposer     string              `json:"proposer,omitempty"`
	Transactions []TransactionDetail `json:"transactions,omitempty"`

	// RawTxs keeps the base64 tx envelopes so callers can derive real tx hashes for lookups.
	RawTxs []string `json:"-"`
}

// HasTime reports whether the block carries a usable timestamp.
func (b *BlockInfo) HasTime() bool {
	return !b.Time.IsZero() && b.Time.Unix() > 0
}
