package controller

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumera-stats/lumerawatch/pkg/metrics"
	"github.com/lumera-stats/lumerawatch/pkg/monitor"
)

func (c *Controller) HandleNetworkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.App.Monitor.NetworkStats(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, stats)
}

// HandleValidators lists validators together with the bonded ratio.
func (c *Controller) HandleValidators(w http.ResponseWriter, r *http.Request) {
	validators, err := c.App.Monitor.Validators(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	active, total := metrics.BondedRatio(validators)
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"validators": validators,
		"active":     active,
		"total":      total,
	})
}

// HandleLatestBlocks lists the newest blocks. count defaults to monitor.DefaultBlockCount.
func (c *Controller) HandleLatestBlocks(w http.ResponseWriter, r *http.Request) {
	count := monitor.DefaultBlockCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.badRequest(w, "count must be a positive integer")
			return
		}
		count = n
	}

	blocks, err := c.App.Monitor.LatestBlocks(r.Context(), count)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, blocks)
}

// HandleGasStats always answers 200: the monitor falls back to default levels.
func (c *Controller) HandleGasStats(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, c.App.Monitor.GasFeeStats(r.Context()))
}

func (c *Controller) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	tx, err := c.App.Monitor.Transaction(r.Context(), hash)
	if err != nil {
		c.writeError(w, err)
		return
	}
	c.writeJSON(w, http.StatusOK, tx)
}
