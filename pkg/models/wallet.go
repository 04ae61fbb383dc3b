package models

import "time"

// TrackedWallet is a wallet followed by the profit/loss tracker.
// StartingBalances only change on an explicit baseline reset; CurrentBalances change on every refresh.
type TrackedWallet struct {
	Address          string    `json:"address"`
	Name             string    `json:"name,omitempty"`
	StartingBalances []Coin    `json:"startingBalances"`
	CurrentBalances  []Coin    `json:"currentBalances"`
	StartDate        time.Time `json:"startDate"`
	LastUpdated      time.Time `json:"lastUpdated"`
}
