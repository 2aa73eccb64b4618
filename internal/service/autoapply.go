package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/observability/metrics"
	"github.com/talentwire/autoapply/internal/observability/statsd"
)

// DefaultErrorCooldown is how long the poll loop backs off after a cycle
// fails outright, typically on database connectivity loss.
const DefaultErrorCooldown = 5 * time.Minute

type jobSearchProcessor interface {
	ProcessJobSearch(ctx context.Context, js *model.JobSearch, maxPerDay int) int
}

type settingsLoader interface {
	Load(ctx context.Context) PollerSettings
}

// AutoApplyServiceOptions configures an AutoApplyService.
type AutoApplyServiceOptions struct {
	JobSearches   JobSearchStore
	Processor     jobSearchProcessor
	Settings      settingsLoader
	ErrorCooldown time.Duration
	Sleep         SleepFunc
	Logger        *slog.Logger
	// Metrics is optional; nil disables emission.
	Metrics statsd.Sink
	// OnCycleError is called after each failed cycle with the running count
	// of consecutive failures. Optional.
	OnCycleError func(ctx context.Context, err error, consecutive int)
}

// AutoApplyService owns the polling loop. It walks every user with active
// job searches, hands each search to the processor, then sleeps for the
// configured interval. The loop belongs to the instance: Start and Stop are
// idempotent and StopAndWait joins the loop goroutine.
type AutoApplyService struct {
	jobSearches JobSearchStore
	processor   jobSearchProcessor
	settings    settingsLoader
	cooldown    time.Duration
	sleep       SleepFunc
	log         *slog.Logger
	sink        statsd.Sink
	onError     func(ctx context.Context, err error, consecutive int)

	userLocks *keyedMutex

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewAutoApplyService(opts AutoApplyServiceOptions) *AutoApplyService {
	if opts.JobSearches == nil || opts.Processor == nil || opts.Settings == nil {
		panic("autoapply service: missing dependency")
	}
	if opts.ErrorCooldown <= 0 {
		opts.ErrorCooldown = DefaultErrorCooldown
	}
	if opts.Sleep == nil {
		opts.Sleep = realSleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AutoApplyService{
		jobSearches: opts.JobSearches,
		processor:   opts.Processor,
		settings:    opts.Settings,
		cooldown:    opts.ErrorCooldown,
		sleep:       opts.Sleep,
		log:         opts.Logger.With("component", "autoapply"),
		sink:        opts.Metrics,
		onError:     opts.OnCycleError,
		userLocks:   newKeyedMutex(),
	}
}

// Start launches the poll loop. Calling Start on a running service is a
// no-op.
func (s *AutoApplyService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.log.Info("poller started")
	go func(done chan struct{}) {
		defer close(done)
		s.runLoop(ctx)
	}(s.done)
}

// Stop signals the loop to exit. It does not wait; use StopAndWait when the
// caller needs the loop joined.
func (s *AutoApplyService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.cancel()
	s.log.Info("poller stopping")
}

// StopAndWait stops the loop and blocks until it exits or ctx is done.
func (s *AutoApplyService) StopAndWait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	s.Stop()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the poll loop is active.
func (s *AutoApplyService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *AutoApplyService) runLoop(ctx context.Context) {
	metrics.EmitRunning(s.sink, true)
	defer metrics.EmitRunning(s.sink, false)

	failures := 0
	for {
		started := time.Now()
		summary, err := s.runCycle(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failures++
			s.log.Error("poll cycle failed", "error", err, "consecutive", failures)
			metrics.EmitCycle(s.sink, metrics.CycleMetric{
				Result:   metrics.ResultError,
				Duration: time.Since(started),
				Err:      err,
			})
			if s.onError != nil {
				s.onError(ctx, err, failures)
			}
			if s.sleep(ctx, s.cooldown) != nil {
				return
			}
			continue
		}
		failures = 0
		s.log.Info("poll cycle complete",
			"job_searches", summary.ConfigsProcessed,
			"applications", summary.ApplicationsSent)
		metrics.EmitCycle(s.sink, metrics.CycleMetric{
			Result:           metrics.ResultSuccess,
			Duration:         time.Since(started),
			ConfigsProcessed: summary.ConfigsProcessed,
			ApplicationsSent: summary.ApplicationsSent,
		})
		interval := s.settings.Load(ctx).PollInterval
		if s.sleep(ctx, interval) != nil {
			return
		}
	}
}

// runCycle processes every user with at least one active job search. An
// error aborts the cycle; per-search problems are absorbed by the processor.
func (s *AutoApplyService) runCycle(ctx context.Context) (model.RunSummary, error) {
	var summary model.RunSummary
	settings := s.settings.Load(ctx)
	userIDs, err := s.jobSearches.DistinctActiveUserIDs(ctx)
	if err != nil {
		return summary, err
	}
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		userSummary, err := s.processUser(ctx, userID, settings.MaxApplicationsPerDay)
		if err != nil {
			return summary, err
		}
		summary.ConfigsProcessed += userSummary.ConfigsProcessed
		summary.ApplicationsSent += userSummary.ApplicationsSent
	}
	return summary, nil
}

// processUser holds the user's lock for the duration so a concurrent RunOnce
// for the same user cannot interleave with the background loop.
func (s *AutoApplyService) processUser(ctx context.Context, userID string, maxPerDay int) (model.RunSummary, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	var summary model.RunSummary
	searches, err := s.jobSearches.ListActiveByUser(ctx, userID)
	if err != nil {
		return summary, err
	}
	for _, js := range searches {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.ApplicationsSent += s.processor.ProcessJobSearch(ctx, js, maxPerDay)
		summary.ConfigsProcessed++
	}
	return summary, nil
}

// RunOnce executes a single poll pass on demand. A non-empty userID limits
// the pass to that user. It runs concurrently with the background loop but
// never for the same user at the same time.
func (s *AutoApplyService) RunOnce(ctx context.Context, userID string) (model.RunSummary, error) {
	settings := s.settings.Load(ctx)
	if userID != "" {
		return s.processUser(ctx, userID, settings.MaxApplicationsPerDay)
	}

	var summary model.RunSummary
	userIDs, err := s.jobSearches.DistinctActiveUserIDs(ctx)
	if err != nil {
		return summary, err
	}
	for _, uid := range userIDs {
		userSummary, err := s.processUser(ctx, uid, settings.MaxApplicationsPerDay)
		if err != nil {
			return summary, err
		}
		summary.ConfigsProcessed += userSummary.ConfigsProcessed
		summary.ApplicationsSent += userSummary.ApplicationsSent
	}
	return summary, nil
}
