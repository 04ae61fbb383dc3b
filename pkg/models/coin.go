package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayDecimals is the fixed exponent between the base denomination and display units.
const DisplayDecimals = 6

// Coin is an amount in the base denomination. Amount is an integer string as served by the chain.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// ToDisplay shifts a base-denomination integer string into display units.
// Unparseable amounts count as zero.
func ToDisplay(amount string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(-DisplayDecimals)
}

// FormatDisplay renders a base amount in display units with six decimals.
func FormatDisplay(amount string) string {
	return ToDisplay(amount).StringFixed(DisplayDecimals)
}

// DisplayDenom turns a base denom into its ticker: ulume -> LUME, uatom -> ATOM.
func DisplayDenom(denom string) string {
	if denom == "ulume" {
		return "LUME"
	}
	if strings.HasPrefix(denom, "u") && len(denom) > 1 {
		return strings.ToUpper(denom[1:])
	}
	return strings.ToUpper(denom)
}

// FindCoin returns the coin with the given denom.
func FindCoin(coins []Coin, denom string) (Coin, bool) {
	for _, c := range coins {
		if c.Denom == denom {
			return c, true
		}
	}
	return Coin{}, false
}
