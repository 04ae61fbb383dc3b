package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// BondStatusBonded is the chain's bonded-status sentinel.
const BondStatusBonded = "BOND_STATUS_BONDED"

// BondStatus holds a validator status as served by any of the validator endpoints.
// Newer gateways send the enum name, legacy ones send the enum number.
type BondStatus string

// UnmarshalJSON accepts both `"BOND_STATUS_BONDED"` and `2`.
func (s *BondStatus) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = BondStatus(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = BondStatus(n.String())
	return nil
}

// IsBonded reports whether the status is the bonded sentinel in either encoding.
func (s BondStatus) IsBonded() bool {
	if string(s) == BondStatusBonded {
		return true
	}
	n, err := strconv.Atoi(string(s))
	return err == nil && n == 2
}

// Validator is the subset of validator fields the dashboard needs.
// Consensus-engine listings only fill Address and VotingPower.
type Validator struct {
	OperatorAddress string     `json:"operator_address,omitempty"`
	Address         string     `json:"address,omitempty"`
	Jailed          bool       `json:"jailed,omitempty"`
	Status          BondStatus `json:"status,omitempty"`
	Tokens          string     `json:"tokens,omitempty"`
	DelegatorShares string     `json:"delegator_shares,omitempty"`
	VotingPower     string     `json:"voting_power,omitempty"`
	Description     struct {
		Moniker string `json:"moniker,omitempty"`
		Website string `json:"website,omitempty"`
	} `json:"description"`
	Commission struct {
		CommissionRates struct {
			Rate string `json:"rate,omitempty"`
		} `json:"commission_rates"`
	} `json:"commission"`
}

// Delegation is one entry of the delegations listing.
type Delegation struct {
	Delegation struct {
		DelegatorAddress string `json:"delegator_address"`
		ValidatorAddress string `json:"validator_address"`
		Shares           string `json:"shares"`
	} `json:"delegation"`
	Balance Coin `json:"balance"`
}
