package controller

import (
	"errors"
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/app/dashboard/types"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodDelete+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	// Chain-wide widgets
	r.HandleFunc("/network/stats", c.HandleNetworkStats).Methods(http.MethodGet)
	r.HandleFunc("/network/validators", c.HandleValidators).Methods(http.MethodGet)
	r.HandleFunc("/blocks/latest", c.HandleLatestBlocks).Methods(http.MethodGet)
	r.HandleFunc("/gas/stats", c.HandleGasStats).Methods(http.MethodGet)
	r.HandleFunc("/txs/{hash}", c.HandleTransaction).Methods(http.MethodGet)

	// Address scoped
	r.HandleFunc("/accounts/{address}/balances", c.HandleBalances).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{address}/delegations", c.HandleDelegations).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{address}/activity", c.HandleActivity).Methods(http.MethodGet)

	// Profit/loss tracker
	r.HandleFunc("/session", c.HandleSession).Methods(http.MethodGet)
	r.HandleFunc("/wallets", c.HandleWalletsList).Methods(http.MethodGet)
	r.HandleFunc("/wallets", c.HandleWalletsAdd).Methods(http.MethodPost)
	r.HandleFunc("/wallets/refresh", c.HandleWalletsRefresh).Methods(http.MethodPost)
	r.HandleFunc("/wallets/{address}/refresh", c.HandleWalletRefresh).Methods(http.MethodPost)
	r.HandleFunc("/wallets/{address}/reset", c.HandleWalletReset).Methods(http.MethodPost)
	r.HandleFunc("/wallets/{address}", c.HandleWalletRemove).Methods(http.MethodDelete)

	// WebSocket endpoint for snapshot updates
	r.HandleFunc("/ws", c.HandleWebSocket).Methods(http.MethodGet)

	return r, nil
}

// writeJSON writes v with the given status.
func (c *Controller) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.App.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps err to a status and writes {"error": message}.
func (c *Controller) writeError(w http.ResponseWriter, err error) {
	status, message := c.classify(err)
	if status >= http.StatusInternalServerError {
		c.App.Logger.Warn("Request failed", zap.Int("status", status), zap.Error(err))
	}
	c.writeJSON(w, status, map[string]string{"error": message})
}

func (c *Controller) classify(err error) (int, string) {
	switch {
	case errors.Is(err, portfolio.ErrAlreadyTracked):
		return http.StatusConflict, err.Error()
	case errors.Is(err, portfolio.ErrNotTracked):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, portfolio.ErrEmptyAddress):
		return http.StatusBadRequest, err.Error()
	case rpc.IsNotFound(err):
		return http.StatusNotFound, c.diagnose(err)
	}

	var gwErr *rpc.GatewayError
	if errors.As(err, &gwErr) || errors.Is(err, rpc.ErrNoValidatorsFound) {
		return http.StatusBadGateway, c.diagnose(err)
	}
	return http.StatusInternalServerError, err.Error()
}

func (c *Controller) diagnose(err error) string {
	return rpc.Diagnose(err, c.App.Config.RESTEndpoint)
}

// badRequest writes a 400 with message.
func (c *Controller) badRequest(w http.ResponseWriter, message string) {
	c.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
