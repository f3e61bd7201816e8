// Package bridge lets a command handler that already sent its immediate
// acknowledgment deliver a second, asynchronous message once generation
// work finishes. A handle always resolves; generation errors and
// timeouts become a user-safe fallback message, never a propagated
// error.
package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/media"
	"github.com/hamlet-bot/hamlet/internal/models"
)

// FallbackMessage is what callers relay when the real result could not
// be produced or delivered in time.
const FallbackMessage = "The village artists are taking longer than expected — your picture will be ready soon!"

// AsyncWorkResult is the value delivered to the chat adapter. An empty
// Message means the earlier acknowledgment stands; an empty Artifacts
// slice means there is no new visual content to show.
type AsyncWorkResult struct {
	Artifacts []media.Artifact
	Message   string
	NotifyIDs []string
}

// Handle is a pending AsyncWorkResult. It resolves exactly once.
type Handle struct {
	ch chan AsyncWorkResult
}

func newHandle() *Handle {
	return &Handle{ch: make(chan AsyncWorkResult, 1)}
}

func (h *Handle) resolve(res AsyncWorkResult) {
	select {
	case h.ch <- res:
	default:
	}
}

// Await blocks until the handle resolves or ctx is cancelled. A
// cancelled context yields the fallback, not an error.
func (h *Handle) Await(ctx context.Context) AsyncWorkResult {
	select {
	case res := <-h.ch:
		return res
	case <-ctx.Done():
		return AsyncWorkResult{Message: FallbackMessage}
	}
}

// Direct runs fn in the background and resolves the handle with its
// result. Errors and panics inside fn are swallowed into the fallback.
func Direct(ctx context.Context, log *zap.Logger, fn func(context.Context) (AsyncWorkResult, error)) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	h := newHandle()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("async work panicked", zap.Any("panic", r))
				h.resolve(AsyncWorkResult{Message: FallbackMessage})
			}
		}()
		res, err := fn(ctx)
		if err != nil {
			log.Warn("async work failed", zap.Error(err))
			h.resolve(AsyncWorkResult{Message: FallbackMessage})
			return
		}
		h.resolve(res)
	}()
	return h
}

// JobStore is the slice of the repository the polling bridge needs.
type JobStore interface {
	Get(ctx context.Context, id uint) (*models.Job, error)
}

// Watcher signals in-process job completion so the bridge does not have
// to wait out a full poll interval. Polling remains the fallback.
type Watcher interface {
	Watch(id uint) <-chan struct{}
}

// PollOptions bound the polling loop.
type PollOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Poll resolves the handle when jobID reaches a terminal status, via
// completion watch plus fixed-interval polling, up to a wall-clock
// timeout. The onComplete callback converts a completed job into the
// deliverable result; a failed job, a timeout, or a callback error all
// resolve to the fallback. The underlying job is never cancelled.
func Poll(
	ctx context.Context,
	store JobStore,
	watcher Watcher,
	jobID uint,
	opts PollOptions,
	log *zap.Logger,
	onComplete func(context.Context, *models.Job) (AsyncWorkResult, error),
) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	h := newHandle()

	go func() {
		deadline := time.NewTimer(opts.Timeout)
		defer deadline.Stop()
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()

		var watch <-chan struct{}
		if watcher != nil {
			watch = watcher.Watch(jobID)
		}

		for {
			job, err := store.Get(ctx, jobID)
			if err != nil {
				log.Warn("bridge poll read failed", zap.Uint("job_id", jobID), zap.Error(err))
			} else if job.Status.IsTerminal() {
				h.resolve(settle(ctx, job, log, onComplete))
				return
			}

			select {
			case <-deadline.C:
				log.Warn("bridge poll timed out", zap.Uint("job_id", jobID), zap.Duration("timeout", opts.Timeout))
				h.resolve(AsyncWorkResult{Message: FallbackMessage})
				return
			case <-ctx.Done():
				h.resolve(AsyncWorkResult{Message: FallbackMessage})
				return
			case <-watch:
				// Closed channel would fire forever; re-check once, then
				// fall back to the ticker.
				watch = nil
			case <-ticker.C:
			}
		}
	}()

	return h
}

func settle(
	ctx context.Context,
	job *models.Job,
	log *zap.Logger,
	onComplete func(context.Context, *models.Job) (AsyncWorkResult, error),
) AsyncWorkResult {
	if job.Status == config.JobStatusFailed {
		log.Warn("bridged job failed", zap.Uint("job_id", job.ID), zap.String("error", job.Error))
		return AsyncWorkResult{Message: FallbackMessage}
	}
	if onComplete == nil {
		return AsyncWorkResult{}
	}
	res, err := onComplete(ctx, job)
	if err != nil {
		log.Warn("bridge completion callback failed", zap.Uint("job_id", job.ID), zap.Error(err))
		return AsyncWorkResult{Message: FallbackMessage}
	}
	return res
}
