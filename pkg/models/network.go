package models

import "time"

// NetworkStatus classifies chain health.
type NetworkStatus string

const (
	NetworkHealthy  NetworkStatus = "healthy"
	NetworkDegraded NetworkStatus = "degraded"
	NetworkDown     NetworkStatus = "down"
)

// NetworkStats is a point-in-time aggregate recomputed on every poll. It is never persisted.
type NetworkStats struct {
	LatestHeight      uint64        `json:"latestHeight"`
	BlockTime         float64       `json:"blockTime"`
	TPS               float64       `json:"tps"`
	AvgGasUsed        uint64        `json:"avgGasUsed"`
	AvgGasWanted      uint64        `json:"avgGasWanted"`
	TotalValidators   int           `json:"totalValidators"`
	ActiveValidators  int           `json:"activeValidators"`
	TotalTransactions int           `json:"totalTransactions"`
	NetworkStatus     NetworkStatus `json:"networkStatus"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}
