package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hamlet-bot/hamlet/internal/dto"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) CreateJob(ctx context.Context, in *dto.JobEnqueueDTO) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, in)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) ListJobs(ctx context.Context, ownerID string) ([]dto.JobResponseDTO, error) {
	args := m.Called(ctx, ownerID)

	jobs, _ := args.Get(0).([]dto.JobResponseDTO)
	return jobs, args.Error(1)
}
