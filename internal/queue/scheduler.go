package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/media"
	"github.com/hamlet-bot/hamlet/internal/models"
)

// Scheduler owns the single-flight processing loop. The busy flag lives
// on the instance so schedulers in different tests never interfere.
type Scheduler struct {
	repo     JobRepo
	executor Executor
	cfg      *config.QueueConfig
	log      *zap.Logger

	busy atomic.Bool
	kick chan struct{}

	mu       sync.Mutex
	watchers map[uint][]chan struct{}
}

var _ Kicker = (*Scheduler)(nil)

func NewScheduler(repo JobRepo, executor Executor, cfg *config.QueueConfig, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		repo:     repo,
		executor: executor,
		cfg:      cfg,
		log:      log,
		kick:     make(chan struct{}, 1),
		watchers: make(map[uint][]chan struct{}),
	}
}

// Kick nudges the loop without blocking. A nudge while one is already
// pending is dropped.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Watch returns a channel closed when job id reaches a terminal status
// in this process. Callers combine it with polling: a job may already be
// terminal when Watch is called, and completions in another process are
// never signalled here.
func (s *Scheduler) Watch(id uint) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.watchers[id] = append(s.watchers[id], ch)
	return ch
}

func (s *Scheduler) notify(id uint) {
	s.mu.Lock()
	for _, ch := range s.watchers[id] {
		close(ch)
	}
	delete(s.watchers, id)
	s.mu.Unlock()
}

// Run executes the periodic loop until ctx is cancelled: ticks at the
// configured interval or on a kick, and purges old terminal jobs on a
// slower independent timer.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	purge := time.NewTicker(s.cfg.PurgeInterval)
	defer purge.Stop()

	s.log.Info("scheduler started",
		zap.Duration("tick_interval", s.cfg.TickInterval),
		zap.Duration("inter_call_delay", s.cfg.InterCallDelay),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		case <-s.kick:
			s.Tick(ctx)
		case <-purge.C:
			deleted, err := s.repo.PurgeOlderThan(ctx, s.cfg.RetentionHours)
			if err != nil {
				s.log.Warn("purge failed", zap.Error(err))
			} else if deleted > 0 {
				s.log.Info("purged old jobs", zap.Int64("deleted", deleted))
			}
		}
	}
}

// Tick runs at most one job. Reentrant calls while a job is in flight
// are dropped, not queued.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		return
	}
	defer s.busy.Store(false)

	job, err := s.repo.NextEligible(ctx, time.Now().UTC())
	if err != nil {
		s.log.Warn("eligibility scan failed", zap.Error(err))
		return
	}
	if job == nil {
		return
	}

	s.process(ctx, job)

	// Hold the flight slot through the inter-call delay so the next
	// dispatch respects the provider rate limit.
	if s.cfg.InterCallDelay > 0 {
		select {
		case <-time.After(s.cfg.InterCallDelay):
		case <-ctx.Done():
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job *models.Job) {
	log := s.log.With(
		zap.Uint("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("owner", job.OwnerID),
	)

	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		log.Warn("mark processing failed", zap.Error(err))
		return
	}

	result, execErr := s.executor.Execute(ctx, job)
	if execErr == nil {
		if err := s.repo.MarkCompleted(ctx, job.ID, result); err != nil {
			log.Warn("mark completed failed", zap.Error(err))
			return
		}
		if err := s.repo.ReleaseChildren(ctx, job.ID, time.Now().UTC()); err != nil {
			log.Warn("release children failed", zap.Error(err))
		}
		log.Info("job completed", zap.Int("attempts", job.Attempts))
		s.notify(job.ID)
		return
	}

	if !media.IsPermanent(execErr) && job.Attempts+1 < job.MaxAttempts {
		if err := s.repo.ScheduleRetry(ctx, job.ID, time.Now().UTC()); err != nil {
			log.Warn("schedule retry failed", zap.Error(err))
			return
		}
		log.Info("job scheduled for retry",
			zap.Int("attempt", job.Attempts+1),
			zap.Int("max_attempts", job.MaxAttempts),
			zap.Error(execErr),
		)
		return
	}

	if err := s.repo.MarkFailed(ctx, job.ID, execErr.Error()); err != nil {
		log.Warn("mark failed failed", zap.Error(err))
		return
	}
	if err := s.repo.FailChildren(ctx, job.ID, "parent job failed"); err != nil {
		log.Warn("fail children failed", zap.Error(err))
	}
	log.Warn("job failed terminally",
		zap.Int("attempts", job.Attempts),
		zap.Bool("permanent", media.IsPermanent(execErr)),
		zap.Error(execErr),
	)
	s.notify(job.ID)
}
