package job

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hamlet-bot/hamlet/internal/dto"
)

// JobServiceInterface defines the contract for the ops-surface business
// logic.
type JobServiceInterface interface {
	CreateJob(ctx context.Context, dto *dto.JobEnqueueDTO) (*dto.JobResponseDTO, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error)
	ListJobs(ctx context.Context, ownerID string) ([]dto.JobResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}
