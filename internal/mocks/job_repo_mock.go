package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"github.com/hamlet-bot/hamlet/internal/models"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Create(ctx context.Context, job *models.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobRepoMock) Get(ctx context.Context, id uint) (*models.Job, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobRepoMock) NextEligible(ctx context.Context, now time.Time) (*models.Job, error) {
	args := m.Called(ctx, now)

	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *JobRepoMock) MarkProcessing(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobRepoMock) MarkCompleted(ctx context.Context, id uint, result datatypes.JSON) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *JobRepoMock) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *JobRepoMock) ReleaseChildren(ctx context.Context, parentID uint, now time.Time) error {
	args := m.Called(ctx, parentID, now)
	return args.Error(0)
}

func (m *JobRepoMock) FailChildren(ctx context.Context, parentID uint, reason string) error {
	args := m.Called(ctx, parentID, reason)
	return args.Error(0)
}

func (m *JobRepoMock) ScheduleRetry(ctx context.Context, id uint, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *JobRepoMock) PurgeOlderThan(ctx context.Context, hours int) (int64, error) {
	args := m.Called(ctx, hours)
	return args.Get(0).(int64), args.Error(1)
}

func (m *JobRepoMock) ListByOwner(ctx context.Context, ownerID string) ([]models.Job, error) {
	args := m.Called(ctx, ownerID)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}
