package controller

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// coinView is a balance as shown on the dashboard cards.
type coinView struct {
	Denom        string `json:"denom"`
	Amount       string `json:"amount"`
	DisplayDenom string `json:"displayDenom"`
	Display      string `json:"display"`
}

func toCoinViews(coins []models.Coin) []coinView {
	out := make([]coinView, 0, len(coins))
	for _, coin := range coins {
		out = append(out, coinView{
			Denom:        coin.Denom,
			Amount:       coin.Amount,
			DisplayDenom: models.DisplayDenom(coin.Denom),
			Display:      models.FormatDisplay(coin.Amount),
		})
	}
	return out
}

// address returns the trimmed {address} route variable, writing a 400 when it is blank.
func (c *Controller) address(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := strings.TrimSpace(mux.Vars(r)["address"])
	if address == "" {
		c.badRequest(w, "address is required")
		return "", false
	}
	return address, true
}

func (c *Controller) HandleBalances(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	coins, err := c.App.Monitor.Balances(r.Context(), address)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":  address,
		"balances": toCoinViews(coins),
	})
}

func (c *Controller) HandleDelegations(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	delegations, err := c.App.Monitor.Delegations(r.Context(), address)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":     address,
		"delegations": delegations,
	})
}

// HandleActivity serves the activity heatmap. History failures degrade to an empty report.
func (c *Controller) HandleActivity(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	c.writeJSON(w, http.StatusOK, c.App.Monitor.Activity(r.Context(), address))
}
