package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/hamlet-bot/hamlet/internal/config"
)

// Job is one schedulable unit of generation work.
//
// A job created with ParentJobID starts in the blocked status and only
// becomes pending when the parent completes. ScheduledAt is the earliest
// instant the scheduler may pick it up.
type Job struct {
	ID          uint             `gorm:"primaryKey"`
	OwnerID     string           `gorm:"type:varchar(64);index;not null"`
	VillageID   string           `gorm:"type:varchar(64);index"`
	Command     string           `gorm:"type:varchar(64)"`
	Prompt      string           `gorm:"type:text;not null"`
	Kind        config.JobKind   `gorm:"type:varchar(32);not null"`
	Status      config.JobStatus `gorm:"type:varchar(16);index;not null;default:'pending'"`
	Priority    int              `gorm:"default:0;not null"`
	Attempts    int              `gorm:"default:0;not null"`
	MaxAttempts int              `gorm:"default:3;not null"`
	ScheduledAt time.Time        `gorm:"index;not null"`
	ParentJobID *uint            `gorm:"index"`
	Result      datatypes.JSON
	Error       string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	CompletedAt *time.Time `gorm:"index"`
}

// Blocked reports whether the job is waiting on an incomplete parent.
func (j *Job) Blocked() bool {
	return j.Status == config.JobStatusBlocked
}

// Exhausted reports whether the retry budget has been spent.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}
