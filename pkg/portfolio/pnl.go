package portfolio

import (
	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DenomPnL is the profit or loss of one denomination since the wallet's baseline, in display units.
type DenomPnL struct {
	Denom         string          `json:"denom"`
	DisplayDenom  string          `json:"displayDenom"`
	Starting      decimal.Decimal `json:"starting"`
	Current       decimal.Decimal `json:"current"`
	Difference    decimal.Decimal `json:"difference"`
	PercentChange decimal.Decimal `json:"percentChange"`
}

// Report is a tracked wallet with its computed profit/loss.
type Report struct {
	Wallet          models.TrackedWallet `json:"wallet"`
	PnL             []DenomPnL           `json:"pnl"`
	TotalDifference string               `json:"totalDifference"`
	TotalPercent    string               `json:"totalPercent"`
}

// percentChange is diff/start*100, or 100 when growing from nothing.
func percentChange(start, current decimal.Decimal) decimal.Decimal {
	if start.IsPositive() {
		return current.Sub(start).Div(start).Mul(hundred)
	}
	if current.IsPositive() {
		return hundred
	}
	return decimal.Zero
}

// ProfitLoss compares starting and current balances per denomination. Denominations present on
// either side are reported, baseline denominations first.
func ProfitLoss(w models.TrackedWallet) []DenomPnL {
	denoms := make([]string, 0, len(w.StartingBalances)+len(w.CurrentBalances))
	seen := make(map[string]bool)
	for _, coins := range [][]models.Coin{w.StartingBalances, w.CurrentBalances} {
		for _, c := range coins {
			if !seen[c.Denom] {
				seen[c.Denom] = true
				denoms = append(denoms, c.Denom)
			}
		}
	}

	out := make([]DenomPnL, 0, len(denoms))
	for _, denom := range denoms {
		start := decimal.Zero
		if c, ok := models.FindCoin(w.StartingBalances, denom); ok {
			start = models.ToDisplay(c.Amount)
		}
		current := decimal.Zero
		if c, ok := models.FindCoin(w.CurrentBalances, denom); ok {
			current = models.ToDisplay(c.Amount)
		}
		out = append(out, DenomPnL{
			Denom:         denom,
			DisplayDenom:  models.DisplayDenom(denom),
			Starting:      start,
			Current:       current,
			Difference:    current.Sub(start),
			PercentChange: percentChange(start, current),
		})
	}
	return out
}

// TotalDifference sums the per-denomination differences.
func TotalDifference(w models.TrackedWallet) decimal.Decimal {
	total := decimal.Zero
	for _, p := range ProfitLoss(w) {
		total = total.Add(p.Difference)
	}
	return total
}

// TotalPercentChange compares the summed display amounts of all denominations.
func TotalPercentChange(w models.TrackedWallet) decimal.Decimal {
	return percentChange(sumDisplay(w.StartingBalances), sumDisplay(w.CurrentBalances))
}

func sumDisplay(coins []models.Coin) decimal.Decimal {
	total := decimal.Zero
	for _, c := range coins {
		total = total.Add(models.ToDisplay(c.Amount))
	}
	return total
}

func signed(d decimal.Decimal, places int32) string {
	rounded := d.Round(places)
	if rounded.IsNegative() {
		return rounded.StringFixed(places)
	}
	return "+" + rounded.StringFixed(places)
}

// FormatDifference renders a display-unit difference with sign and six decimals, e.g. "+0.200000".
func FormatDifference(d decimal.Decimal) string {
	return signed(d, models.DisplayDecimals)
}

// FormatPercent renders a percentage with sign and two decimals, e.g. "+20.00%".
func FormatPercent(p decimal.Decimal) string {
	return signed(p, 2) + "%"
}

// BuildReport computes the profit/loss report of a wallet.
func BuildReport(w models.TrackedWallet) Report {
	return Report{
		Wallet:          w,
		PnL:             ProfitLoss(w),
		TotalDifference: FormatDifference(TotalDifference(w)),
		TotalPercent:    FormatPercent(TotalPercentChange(w)),
	}
}
