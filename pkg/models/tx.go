package models

import "time"

// TxStatus is the observed execution status of a transaction.
// Success and failed are terminal; pending must be re-queried.
type TxStatus string

const (
	TxStatusSuccess TxStatus = "success"
	TxStatusPending TxStatus = "pending"
	TxStatusFailed  TxStatus = "failed"
)

// TransactionDetail is a normalized transaction record.
// Amount is kept in the base denomination as an integer string; use DisplayAmount for UI values.
type TransactionDetail struct {
	Hash             string    `json:"hash"`
	Height           uint64    `json:"height"`
	Type             string    `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	Amount           string    `json:"amount,omitempty"`
	Denom            string    `json:"denom,omitempty"`
	From             string    `json:"from,omitempty"`
	To               string    `json:"to,omitempty"`
	ValidatorAddress string    `json:"validator_address,omitempty"`
	Status           TxStatus  `json:"status"`
	RawLog           string    `json:"raw_log,omitempty"`
	Memo             string    `json:"memo,omitempty"`
}

// DisplayAmount returns the amount shifted into display units, or "" when no amount is known.
func (t *TransactionDetail) DisplayAmount() string {
	if t.Amount == "" {
		return ""
	}
	return FormatDisplay(t.Amount)
}

// TxGasUsage is the gas accounting of a single looked-up transaction.
type TxGasUsage struct {
	Hash      string `json:"hash"`
	GasUsed   uint64 `json:"gas_used"`
	GasWanted uint64 `json:"gas_wanted"`
}
