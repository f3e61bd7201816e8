package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/models"
)

func newJob(mod func(*models.Job)) *models.Job {
	j := &models.Job{
		OwnerID:     "user-1",
		Command:     "plant",
		Prompt:      "a healthy young turnip plant",
		Kind:        config.KindObjectBaseline,
		Priority:    config.PriorityNormal,
		MaxAttempts: 3,
	}
	if mod != nil {
		mod(j)
	}
	return j
}

func TestJobRepository_Create(t *testing.T) {
	tests := []struct {
		name       string
		job        *models.Job
		wantStatus config.JobStatus
		wantErr    bool
	}{
		{
			name:       "parentless job starts pending",
			job:        newJob(nil),
			wantStatus: config.JobStatusPending,
		},
		{
			name: "job with parent starts blocked",
			job: newJob(func(j *models.Job) {
				parent := uint(1)
				j.ParentJobID = &parent
			}),
			wantStatus: config.JobStatusBlocked,
		},
		{
			name: "explicit status is preserved",
			job: newJob(func(j *models.Job) {
				j.Status = config.JobStatusRetrying
			}),
			wantStatus: config.JobStatusRetrying,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := SetupTestDB(t)
			repo := NewJobRepository(db)

			// Parent row so the FK-style reference resolves.
			require.NoError(t, repo.Create(context.Background(), newJob(nil)))

			err := repo.Create(context.Background(), tt.job)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, tt.job.Status)
			assert.False(t, tt.job.ScheduledAt.IsZero())
			assert.NotZero(t, tt.job.ID)
		})
	}
}

func TestJobRepository_Create_DefaultsMaxAttempts(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)

	j := newJob(func(j *models.Job) { j.MaxAttempts = 0 })
	require.NoError(t, repo.Create(context.Background(), j))
	assert.Equal(t, config.DefaultMaxAttempts, j.MaxAttempts)
}

func TestJobRepository_NextEligible_PriorityThenFIFO(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)

	// Created in order X, Y, Z with priorities 5, 10, 5.
	x := newJob(func(j *models.Job) { j.Priority = 5; j.CreatedAt = base })
	y := newJob(func(j *models.Job) { j.Priority = 10; j.CreatedAt = base.Add(time.Second) })
	z := newJob(func(j *models.Job) { j.Priority = 5; j.CreatedAt = base.Add(2 * time.Second) })
	for _, j := range []*models.Job{x, y, z} {
		require.NoError(t, repo.Create(ctx, j))
	}

	wantOrder := []uint{y.ID, x.ID, z.ID}
	for _, want := range wantOrder {
		got, err := repo.NextEligible(ctx, time.Now().UTC())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got.ID)

		// Remove from eligibility for the next pick.
		require.NoError(t, repo.MarkCompleted(ctx, got.ID, datatypes.JSON(`{}`)))
	}

	got, err := repo.NextEligible(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobRepository_NextEligible_DependencyGating(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	parent := newJob(nil)
	require.NoError(t, repo.Create(ctx, parent))

	child := newJob(func(j *models.Job) {
		j.Kind = config.KindVillageComposite
		j.ParentJobID = &parent.ID
	})
	require.NoError(t, repo.Create(ctx, child))

	// Force the child due. It must still be invisible: blocked status
	// and an incomplete parent both gate it.
	require.NoError(t, db.Model(&models.Job{}).
		Where("id = ?", child.ID).
		Updates(map[string]any{
			"status":       config.JobStatusPending,
			"scheduled_at": time.Now().UTC().Add(-time.Minute),
		}).Error)

	got, err := repo.NextEligible(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, parent.ID, got.ID, "only the parent may be selected while it is incomplete")

	require.NoError(t, repo.MarkCompleted(ctx, parent.ID, datatypes.JSON(`{}`)))

	got, err = repo.NextEligible(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, child.ID, got.ID, "child becomes selectable once the parent completed")
}

func TestJobRepository_NextEligible_SkipsFutureAndProcessing(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	future := newJob(func(j *models.Job) { j.ScheduledAt = time.Now().UTC().Add(time.Hour) })
	require.NoError(t, repo.Create(ctx, future))

	inFlight := newJob(nil)
	require.NoError(t, repo.Create(ctx, inFlight))
	require.NoError(t, repo.MarkProcessing(ctx, inFlight.ID))

	retrying := newJob(func(j *models.Job) { j.Status = config.JobStatusRetrying })
	require.NoError(t, repo.Create(ctx, retrying))

	got, err := repo.NextEligible(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, retrying.ID, got.ID, "retrying is schedulable, future and processing are not")
}

func TestJobRepository_ReleaseChildren(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	parent := newJob(nil)
	require.NoError(t, repo.Create(ctx, parent))

	children := make([]*models.Job, 2)
	for i := range children {
		children[i] = newJob(func(j *models.Job) { j.ParentJobID = &parent.ID })
		require.NoError(t, repo.Create(ctx, children[i]))
	}

	now := time.Now().UTC()
	require.NoError(t, repo.MarkCompleted(ctx, parent.ID, datatypes.JSON(`{}`)))
	require.NoError(t, repo.ReleaseChildren(ctx, parent.ID, now))

	for _, c := range children {
		got, err := repo.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, config.JobStatusPending, got.Status)
		assert.False(t, got.ScheduledAt.After(now), "released child must be due immediately")
	}
}

func TestJobRepository_FailChildren(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	parent := newJob(nil)
	require.NoError(t, repo.Create(ctx, parent))

	child := newJob(func(j *models.Job) { j.ParentJobID = &parent.ID })
	require.NoError(t, repo.Create(ctx, child))

	require.NoError(t, repo.MarkFailed(ctx, parent.ID, "provider exploded"))
	require.NoError(t, repo.FailChildren(ctx, parent.ID, "parent job failed"))

	got, err := repo.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, config.JobStatusFailed, got.Status)
	assert.Equal(t, "parent job failed", got.Error)
	assert.NotNil(t, got.CompletedAt)
}

func TestJobRepository_ScheduleRetry_Backoff(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newJob(nil)
	require.NoError(t, repo.Create(ctx, j))

	now := time.Now().UTC()

	// First failure: attempts 0 -> 1, due at +2m.
	require.NoError(t, repo.ScheduleRetry(ctx, j.ID, now))
	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, config.JobStatusRetrying, got.Status)
	assert.WithinDuration(t, now.Add(2*time.Minute), got.ScheduledAt, time.Second)

	// Second failure: attempts 1 -> 2, due at +4m.
	require.NoError(t, repo.ScheduleRetry(ctx, j.ID, now))
	got, err = repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.WithinDuration(t, now.Add(4*time.Minute), got.ScheduledAt, time.Second)
}

func TestJobRepository_TerminalTimestamps(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	completed := newJob(nil)
	failed := newJob(nil)
	pending := newJob(nil)
	for _, j := range []*models.Job{completed, failed, pending} {
		require.NoError(t, repo.Create(ctx, j))
	}

	require.NoError(t, repo.MarkCompleted(ctx, completed.ID, datatypes.JSON(`{"kind":"object_baseline","payload":{}}`)))
	require.NoError(t, repo.MarkFailed(ctx, failed.ID, "boom"))

	got, err := repo.Get(ctx, completed.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)
	assert.NotEmpty(t, got.Result)

	got, err = repo.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "boom", got.Error)

	got, err = repo.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt, "non-terminal jobs never carry a completion timestamp")
}

func TestJobRepository_PurgeOlderThan(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	old := newJob(nil)
	fresh := newJob(nil)
	active := newJob(nil)
	for _, j := range []*models.Job{old, fresh, active} {
		require.NoError(t, repo.Create(ctx, j))
	}

	require.NoError(t, repo.MarkCompleted(ctx, old.ID, datatypes.JSON(`{}`)))
	require.NoError(t, repo.MarkCompleted(ctx, fresh.ID, datatypes.JSON(`{}`)))

	// Backdate one completion past the retention window.
	stale := time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.Job{}).
		Where("id = ?", old.ID).
		Update("completed_at", stale).Error)

	deleted, err := repo.PurgeOlderThan(ctx, 24)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.Get(ctx, old.ID)
	assert.Error(t, err, "25-hour-old job is gone")

	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err, "1-hour-old job survives")

	_, err = repo.Get(ctx, active.ID)
	assert.NoError(t, err, "non-terminal jobs are never purged")
}

func TestJobRepository_Get_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)

	_, err := repo.Get(context.Background(), 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestJobRepository_ListByOwner(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	mine := newJob(nil)
	theirs := newJob(func(j *models.Job) { j.OwnerID = "user-2" })
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, theirs))

	jobs, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, mine.ID, jobs[0].ID)
}
