package dto

import (
	"encoding/json"
	"time"
)

// JobEnqueueDTO is the ops-surface enqueue request. Chat commands go
// through the village service instead; this path exists for manual
// re-runs and diagnostics.
type JobEnqueueDTO struct {
	OwnerID     string `json:"owner_id" validate:"required"`
	VillageID   string `json:"village_id,omitempty"`
	Command     string `json:"command,omitempty"`
	Kind        string `json:"kind" validate:"required"`
	Prompt      string `json:"prompt" validate:"required"`
	Priority    int    `json:"priority" validate:"gte=0,lte=100"`
	MaxAttempts int    `json:"max_attempts" validate:"gte=0,lte=10"`
	ParentJobID *uint  `json:"parent_job_id,omitempty"`
}

type JobResponseDTO struct {
	ID          uint            `json:"id"`
	OwnerID     string          `json:"owner_id"`
	VillageID   string          `json:"village_id,omitempty"`
	Command     string          `json:"command,omitempty"`
	Kind        string          `json:"kind"`
	Prompt      string          `json:"prompt"`
	Status      string          `json:"status"`
	Priority    int             `json:"priority"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	ParentJobID *uint           `json:"parent_job_id,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
