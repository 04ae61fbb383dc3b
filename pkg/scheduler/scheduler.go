package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is used when a job is registered without a positive interval.
const DefaultInterval = 30 * time.Second

var (
	ErrDuplicateJob = errors.New("job already registered")
	ErrStarted      = errors.New("scheduler already started")
)

// Job is one unit of scheduled work. The context is cancelled on Stop and bounded by the job interval.
type Job func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	id       cron.EntryID
}

// Scheduler runs named jobs at fixed intervals until stopped.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]entry
	started bool
	wg      sync.WaitGroup
}

// New creates a stopped scheduler.
func New(logger *zap.Logger) *Scheduler {
	cl := newCronLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		// Seconds field, optional
		cron:    cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]entry),
	}
}

// Every registers fn to run every interval. Jobs also run once as soon as the scheduler starts.
func (s *Scheduler) Every(name string, interval time.Duration, fn Job) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateJob)
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.wrap(name, interval, fn)))
	s.entries[name] = entry{name: name, interval: interval, id: id}
	return nil
}

// wrap binds a job to the scheduler context and keeps each run bounded.
func (s *Scheduler) wrap(name string, interval time.Duration, fn Job) func() {
	return func() {
		if s.ctx.Err() != nil {
			return
		}
		rctx, cancel := context.WithTimeout(s.ctx, interval)
		defer cancel()

		start := time.Now()
		if err := fn(rctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("[scheduler] job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Debug("[scheduler] job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

// Jobs returns the registered job names with their intervals.
func (s *Scheduler) Jobs() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.entries))
	for name, e := range s.entries {
		out[name] = e.interval
	}
	return out
}

// Start runs every job once, then hands them to the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ids := make([]cron.EntryID, 0, len(s.entries))
	for _, e := range s.entries {
		ids = append(ids, e.id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		job := s.cron.Entry(id).WrappedJob
		if job == nil {
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.Run()
		}()
	}

	s.cron.Start()
	s.logger.Info("[scheduler] started", zap.Int("jobs", len(ids)))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("[scheduler] stopped")
}
