package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/pkg/aggregator"
	"github.com/lumera-stats/lumerawatch/pkg/monitor"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/redis"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/scheduler"
	"github.com/lumera-stats/lumerawatch/pkg/wallet"
)

type App struct {
	Config Config

	// Client talks to the chain's REST gateway and consensus RPC.
	Client     rpc.Client
	Aggregator *aggregator.Aggregator
	Monitor    *monitor.Service
	Tracker    *portfolio.Tracker
	// Session is the connected wallet; nil when none is configured.
	Session wallet.Session

	// Scheduler refreshes the monitor snapshots every RefreshInterval.
	Scheduler *scheduler.Scheduler

	// RedisClient backs persistence and live updates; nil when Redis is disabled.
	RedisClient *redis.Client

	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("Server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.Server.Shutdown(shutdownCtx)

	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tracker != nil {
		a.Tracker.Close()
	}
	if a.Aggregator != nil {
		a.Aggregator.Close()
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
