package job

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hamlet-bot/hamlet/common"
	"github.com/hamlet-bot/hamlet/internal/dto"
	"github.com/hamlet-bot/hamlet/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Create handles HTTP requests for enqueuing a new job. It validates
// and binds the request body, delegates to the JobService, and returns
// HTTP 201 with the created job on success.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.JobEnqueueDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get handles HTTP requests to fetch a job by its ID.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, common.APIError{Message: "Invalid ID"})
		return
	}

	resp, err := h.service.GetJobByID(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles HTTP requests to retrieve all jobs for a given owner.
func (h *JobHandler) List(c *gin.Context) {
	ownerID := c.Query("owner")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, common.APIError{Message: "owner parameter is required"})
		return
	}

	jobs, err := h.service.ListJobs(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
