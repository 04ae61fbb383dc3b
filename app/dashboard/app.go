package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/app/dashboard/types"
	"github.com/lumera-stats/lumerawatch/pkg/aggregator"
	"github.com/lumera-stats/lumerawatch/pkg/logging"
	"github.com/lumera-stats/lumerawatch/pkg/monitor"
	"github.com/lumera-stats/lumerawatch/pkg/portfolio"
	"github.com/lumera-stats/lumerawatch/pkg/redis"
	"github.com/lumera-stats/lumerawatch/pkg/retry"
	"github.com/lumera-stats/lumerawatch/pkg/rpc"
	"github.com/lumera-stats/lumerawatch/pkg/scheduler"
	"github.com/lumera-stats/lumerawatch/pkg/store"
	"github.com/lumera-stats/lumerawatch/pkg/wallet"
)

// keyPrefix namespaces every persisted key in Redis.
const keyPrefix = "lumera:"

// Initialize initializes the application.
func Initialize(ctx context.Context) (*types.App, error) {
	cfg, err := types.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	client := rpc.NewHTTPWithOpts(rpc.Opts{
		RESTEndpoint: cfg.RESTEndpoint,
		RPCEndpoint:  cfg.RPCEndpoint,
		Origin:       cfg.GatewayOrigin,
		Timeout:      cfg.GatewayTimeout,
		Logger:       logger,
	})
	probe(ctx, client, cfg.ProbeRetries, logger)

	// Redis is optional: without it history lives in memory and live updates are disabled.
	var redisClient *redis.Client
	var kv store.KV = store.NewMemoryKV()
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - history will not survive restarts",
				zap.Error(err))
			redisClient = nil
		} else {
			kv = store.NewRedisKV(redisClient, keyPrefix)
			logger.Info("Redis client initialized for persistence and WebSocket updates")
		}
	} else {
		logger.Info("Redis disabled - using in-memory storage")
	}

	agg := aggregator.New(client, logger, cfg.FetchWorkers)
	tracker := portfolio.NewTracker(client, store.NewWalletStore(kv, logger), logger, cfg.FetchWorkers)

	var publisher monitor.Publisher
	if redisClient != nil {
		publisher = redisClient
	}
	svc := monitor.NewService(client, agg, store.NewGasHistory(kv, logger), tracker, publisher, logger)

	var session wallet.Session
	if cfg.WalletAddress != "" {
		session = connectSession(ctx, cfg.WalletAddress, tracker, logger)
	}

	sched := scheduler.New(logger)
	if err := registerJobs(sched, svc, cfg.RefreshInterval); err != nil {
		return nil, err
	}

	app := &types.App{
		Config:      cfg,
		Client:      client,
		Aggregator:  agg,
		Monitor:     svc,
		Tracker:     tracker,
		Session:     session,
		Scheduler:   sched,
		RedisClient: redisClient,
		Logger:      logger,
	}

	return app, nil
}

// probe checks the consensus RPC is reachable. Failures are only logged: every widget reports
// its own gateway errors.
func probe(ctx context.Context, client *rpc.HTTPClient, retries int, logger *zap.Logger) {
	if retries <= 0 {
		return
	}
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = retries
	status, err := client.Probe(ctx, cfg)
	if err != nil {
		logger.Warn("Chain endpoint probe failed", zap.Error(err))
		return
	}
	logger.Info("Connected to chain",
		zap.String("network", status.Result.NodeInfo.Network),
		zap.Uint64("latestHeight", uint64(status.Result.SyncInfo.LatestBlockHeight)),
		zap.Bool("catchingUp", status.Result.SyncInfo.CatchingUp))
}

// connectSession connects the configured wallet and tracks it when nothing else is tracked.
func connectSession(ctx context.Context, address string, tracker *portfolio.Tracker, logger *zap.Logger) wallet.Session {
	session := wallet.NewStaticSession(address)
	if err := session.Connect(ctx); err != nil {
		logger.Warn("Wallet session not connected", zap.Error(err))
		return session
	}
	added, err := tracker.EnsureSession(ctx, session)
	if err != nil {
		logger.Warn("Failed to track connected wallet", zap.String("address", address), zap.Error(err))
		return session
	}
	if added {
		logger.Info("Tracking connected wallet", zap.String("address", address))
	}
	return session
}

// registerJobs schedules the periodic snapshot refreshes.
func registerJobs(sched *scheduler.Scheduler, svc *monitor.Service, interval time.Duration) error {
	jobs := map[string]scheduler.Job{
		monitor.TopicNetwork: func(ctx context.Context) error {
			_, err := svc.NetworkStats(ctx)
			return err
		},
		monitor.TopicGas: func(ctx context.Context) error {
			svc.GasFeeStats(ctx)
			return nil
		},
		monitor.TopicBlocks: func(ctx context.Context) error {
			_, err := svc.LatestBlocks(ctx, monitor.DefaultBlockCount)
			return err
		},
		monitor.TopicWallets: func(ctx context.Context) error {
			_, err := svc.RefreshWallets(ctx)
			return err
		},
	}
	for name, job := range jobs {
		if err := sched.Every(name, interval, job); err != nil {
			return err
		}
	}
	return nil
}
