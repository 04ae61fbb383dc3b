package controller

import (
	"net/http"
	"time"
)

// HandleHealth reports liveness and the age of every cached snapshot.
func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c.App.RedisClient != nil {
		if err := c.App.RedisClient.Health(ctx); err != nil {
			c.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "redis connection error"})
			return
		}
	}

	snapshots := map[string]time.Time{}
	for _, snap := range c.App.Monitor.Snapshots() {
		snapshots[snap.Topic] = snap.UpdatedAt
	}
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"snapshots": snapshots,
	})
}
