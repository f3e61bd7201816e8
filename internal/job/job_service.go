package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/hamlet-bot/hamlet/common"
	"github.com/hamlet-bot/hamlet/internal/config"
	"github.com/hamlet-bot/hamlet/internal/dto"
	"github.com/hamlet-bot/hamlet/internal/models"
	"github.com/hamlet-bot/hamlet/internal/queue"
)

type JobService struct {
	repo   queue.JobRepo
	kicker queue.Kicker
}

func NewJobService(repo queue.JobRepo, kicker queue.Kicker) *JobService {
	return &JobService{repo: repo, kicker: kicker}
}

var _ JobServiceInterface = (*JobService)(nil)

// CreateJob validates enqueue input, applies business rules, constructs
// a Job model, and persists it. The scheduler is kicked so the job does
// not wait for the next periodic tick. Returns a typed API error for
// validation failures and an internal error for persistence failures.
func (s *JobService) CreateJob(ctx context.Context, in *dto.JobEnqueueDTO) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	kind := config.JobKind(in.Kind)
	if !slices.Contains(config.AllowedJobKinds, kind) {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid job kind",
			map[string]any{
				"provided": in.Kind,
				"allowed":  config.AllowedJobKinds,
			},
		)
	}

	if kind == config.KindVillageComposite && in.VillageID == "" {
		return nil, common.Errf(http.StatusBadRequest, "composite jobs require village_id")
	}

	if in.ParentJobID != nil {
		if _, err := s.repo.Get(ctx, *in.ParentJobID); err != nil {
			return nil, common.Errf(http.StatusBadRequest, "parent job %d not found", *in.ParentJobID)
		}
	}

	maxAttempts := in.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = config.DefaultMaxAttempts
	}

	job := models.Job{
		OwnerID:     in.OwnerID,
		VillageID:   in.VillageID,
		Command:     in.Command,
		Prompt:      in.Prompt,
		Kind:        kind,
		Priority:    in.Priority,
		MaxAttempts: maxAttempts,
		ParentJobID: in.ParentJobID,
	}

	if err := s.repo.Create(ctx, &job); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, common.Errf(http.StatusRequestTimeout, "request was canceled")
		case errors.Is(err, context.DeadlineExceeded):
			return nil, common.Errf(http.StatusRequestTimeout, "request timeout")
		default:
			return nil, common.Errf(http.StatusInternalServerError, "failed to add job to database")
		}
	}

	s.kicker.Kick()

	return toResponse(&job), nil
}

// GetJobByID retrieves a job by its ID, mapping repository errors to
// appropriate API errors.
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	job, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}

		if errors.Is(err, gorm.ErrRecordNotFound) ||
			strings.Contains(err.Error(), "job not found") {
			return nil, common.Errf(http.StatusNotFound, "job not found")
		}

		return nil, common.Errf(http.StatusInternalServerError, "failed to get job")
	}

	return toResponse(job), nil
}

// ListJobs retrieves all jobs for an owner, newest first.
func (s *JobService) ListJobs(ctx context.Context, ownerID string) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	jobs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}
		return nil, common.Errf(http.StatusInternalServerError, "failed to list jobs")
	}

	out := make([]dto.JobResponseDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, *toResponse(&jobs[i]))
	}
	return out, nil
}

func toResponse(job *models.Job) *dto.JobResponseDTO {
	return &dto.JobResponseDTO{
		ID:          job.ID,
		OwnerID:     job.OwnerID,
		VillageID:   job.VillageID,
		Command:     job.Command,
		Kind:        string(job.Kind),
		Prompt:      job.Prompt,
		Status:      string(job.Status),
		Priority:    job.Priority,
		Attempts:    job.Attempts,
		MaxAttempts: job.MaxAttempts,
		ScheduledAt: job.ScheduledAt,
		ParentJobID: job.ParentJobID,
		Result:      json.RawMessage(job.Result),
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}
