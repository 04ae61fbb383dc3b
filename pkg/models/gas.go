package models

import "time"

// GasPriceData is one gas price observation. GasPrice is base denom per gas unit.
type GasPriceData struct {
	Timestamp time.Time `json:"timestamp"`
	GasPrice  float64   `json:"gasPrice"`
	GasUsed   uint64    `json:"gasUsed"`
	GasWanted uint64    `json:"gasWanted"`
}

// GasPriceLevels is the low/average/high triple shown as the current gas price.
type GasPriceLevels struct {
	Low     float64 `json:"low"`
	Average float64 `json:"average"`
	High    float64 `json:"high"`
}

// GasFeeStats is the gas monitor snapshot.
type GasFeeStats struct {
	Current    GasPriceLevels `json:"current"`
	History24h []GasPriceData `json:"history24h"`
	Min24h     float64        `json:"min24h"`
	Max24h     float64        `json:"max24h"`
	Avg24h     float64        `json:"avg24h"`

	// PriceChange is the percent move of the last 10 samples against the 10 before; nil if unknown.
	PriceChange *float64 `json:"priceChange,omitempty"`
	// Hourly holds averaged gas prices for the hours of the last day that have samples.
	Hourly    []HourlyGasPoint `json:"hourly,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// HourlyGasPoint is the average gas price of one hour bucket, hour 0 being 24h ago.
type HourlyGasPoint struct {
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}
