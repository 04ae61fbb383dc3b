package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
)

// AddWalletRequest is the body of POST /wallets.
type AddWalletRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// HandleSession reports the connected wallet, if any.
func (c *Controller) HandleSession(w http.ResponseWriter, _ *http.Request) {
	session := c.App.Session
	if session == nil {
		c.writeJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": session.IsConnected(),
		"address":   session.Address(),
		"loading":   session.IsLoading(),
		"error":     session.Error(),
	})
}

func (c *Controller) HandleWalletsList(w http.ResponseWriter, r *http.Request) {
	reports, err := c.App.Tracker.Reports(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, reports)
}

func (c *Controller) HandleWalletsAdd(w http.ResponseWriter, r *http.Request) {
	var req AddWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.badRequest(w, "invalid request body")
		return
	}
	tracked, err := c.App.Tracker.Add(r.Context(), req.Address, req.Name)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.publishWallets(r)
	c.writeJSON(w, http.StatusCreated, portfolio.BuildReport(tracked))
}

// HandleWalletsRefresh refreshes every tracked wallet. Wallets whose balances could not be
// fetched keep their previous values.
func (c *Controller) HandleWalletsRefresh(w http.ResponseWriter, r *http.Request) {
	reports, err := c.App.Monitor.RefreshWallets(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, reports)
}

// HandleWalletRefresh refreshes one wallet. A failed balance fetch leaves it untouched.
func (c *Controller) HandleWalletRefresh(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	tracked, err := c.App.Tracker.Refresh(r.Context(), address)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.publishWallets(r)
	c.writeJSON(w, http.StatusOK, portfolio.BuildReport(tracked))
}

func (c *Controller) HandleWalletReset(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	tracked, err := c.App.Tracker.ResetBaseline(r.Context(), address)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.publishWallets(r)
	c.writeJSON(w, http.StatusOK, portfolio.BuildReport(tracked))
}

func (c *Controller) HandleWalletRemove(w http.ResponseWriter, r *http.Request) {
	address, ok := c.address(w, r)
	if !ok {
		return
	}
	if err := c.App.Tracker.Remove(r.Context(), address); err != nil {
		c.writeError(w, err)
		return
	}
	c.publishWallets(r)
	w.WriteHeader(http.StatusNoContent)
}

// publishWallets pushes the updated wallet reports to live subscribers.
func (c *Controller) publishWallets(r *http.Request) {
	if _, err := c.App.Monitor.PublishWallets(r.Context()); err != nil {
		c.App.Logger.Debug("Wallet snapshot not published", zap.Error(err))
	}
}
