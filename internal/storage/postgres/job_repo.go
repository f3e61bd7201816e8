package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/queue"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ queue.JobRepo = (*JobRepository)(nil)

// Create inserts a new job record. Jobs with a parent start blocked and
// stay invisible to eligibility scans until the parent completes.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.Status == "" {
		if job.ParentJobID != nil {
			job.Status = config.JobStatusBlocked
		} else {
			job.Status = config.JobStatusPending
		}
	}
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = time.Now().UTC()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = config.DefaultMaxAttempts
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a single job by id.
func (r *JobRepository) Get(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// NextEligible returns the next job the scheduler should run: schedulable
// status, due, and not gated behind an incomplete parent. Ordering is
// priority descending, then FIFO by creation time. Returns nil, nil when
// nothing is eligible.
func (r *JobRepository) NextEligible(ctx context.Context, now time.Time) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Where("status IN ?", []config.JobStatus{config.JobStatusPending, config.JobStatusRetrying}).
		Where("scheduled_at <= ?", now).
		Where(
			"parent_job_id IS NULL OR parent_job_id IN (?)",
			r.db.Model(&models.Job{}).Select("id").Where("status = ?", config.JobStatusCompleted),
		).
		Order("priority DESC").
		Order("created_at ASC").
		Order("id ASC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("next eligible job: %w", err)
	}
	return &job, nil
}

// MarkProcessing transitions a job into the in-flight state.
func (r *JobRepository) MarkProcessing(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Update("status", config.JobStatusProcessing).Error; err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// MarkCompleted stores the result and stamps the terminal transition.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uint, result datatypes.JSON) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       config.JobStatusCompleted,
			"result":       result,
			"completed_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// MarkFailed stores the error message and stamps the terminal transition.
func (r *JobRepository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       config.JobStatusFailed,
			"error":        errMsg,
			"completed_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// ReleaseChildren unblocks every still-blocked child of the given parent,
// making each immediately eligible.
func (r *JobRepository) ReleaseChildren(ctx context.Context, parentID uint, now time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("parent_job_id = ? AND status = ?", parentID, config.JobStatusBlocked).
		Updates(map[string]any{
			"status":       config.JobStatusPending,
			"scheduled_at": now,
		}).Error; err != nil {
		return fmt.Errorf("release children: %w", err)
	}
	return nil
}

// FailChildren terminally fails every still-blocked child of a parent
// that itself failed, instead of leaving them parked forever.
func (r *JobRepository) FailChildren(ctx context.Context, parentID uint, reason string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("parent_job_id = ? AND status = ?", parentID, config.JobStatusBlocked).
		Updates(map[string]any{
			"status":       config.JobStatusFailed,
			"error":        reason,
			"completed_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("fail children: %w", err)
	}
	return nil
}

// ScheduleRetry increments the attempt counter and pushes the job back
// into eligibility after an exponential backoff. The caller checks the
// budget first; an exhausted job must be failed, not retried.
func (r *JobRepository) ScheduleRetry(ctx context.Context, id uint, now time.Time) error {
	job, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	attempts := job.Attempts + 1
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":     attempts,
			"status":       config.JobStatusRetrying,
			"scheduled_at": now.Add(queue.Backoff(attempts)),
		}).Error; err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return nil
}

// PurgeOlderThan hard-deletes terminal jobs whose completion predates the
// retention cutoff. Returns the number of rows removed.
func (r *JobRepository) PurgeOlderThan(ctx context.Context, hours int) (int64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	res := r.db.WithContext(ctx).
		Where("status IN ?", []config.JobStatus{config.JobStatusCompleted, config.JobStatusFailed}).
		Where("completed_at < ?", cutoff).
		Delete(&models.Job{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListByOwner retrieves all jobs for one owner, newest first.
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
