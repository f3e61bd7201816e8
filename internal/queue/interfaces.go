// Package queue drives generation jobs through their lifecycle: one job
// in flight at a time, dependency gating through parent links, bounded
// exponential retries, and hard deletion of old terminal jobs.
package queue

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/hamlet-bot/hamlet/internal/models"
)

// JobRepo is the durable store the scheduler runs against.
type JobRepo interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id uint) (*models.Job, error)
	NextEligible(ctx context.Context, now time.Time) (*models.Job, error)
	MarkProcessing(ctx context.Context, id uint) error
	MarkCompleted(ctx context.Context, id uint, result datatypes.JSON) error
	MarkFailed(ctx context.Context, id uint, errMsg string) error
	ReleaseChildren(ctx context.Context, parentID uint, now time.Time) error
	FailChildren(ctx context.Context, parentID uint, reason string) error
	ScheduleRetry(ctx context.Context, id uint, now time.Time) error
	PurgeOlderThan(ctx context.Context, hours int) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Job, error)
}

// Executor runs one job's provider call and returns the encoded result
// payload. The scheduler does not know what any job kind means; the
// executor owns prompt assembly, reference lookup, and result encoding.
type Executor interface {
	Execute(ctx context.Context, job *models.Job) ([]byte, error)
}

// Kicker is the nudge surface enqueue paths use so a fresh job does not
// wait for the next periodic tick.
type Kicker interface {
	Kick()
}
