package config

// JobStatus is the queue-visible lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusBlocked    JobStatus = "blocked"
	JobStatusProcessing JobStatus = "processing"
	JobStatusRetrying   JobStatus = "retrying"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobKind selects the generation parameters for a job. It never changes
// queue mechanics.
type JobKind string

const (
	KindAvatarBaseline   JobKind = "avatar_baseline"
	KindVillageBaseline  JobKind = "village_baseline"
	KindObjectBaseline   JobKind = "object_baseline"
	KindVillageComposite JobKind = "village_composite"
)

var AllowedJobKinds = []JobKind{
	KindAvatarBaseline,
	KindVillageBaseline,
	KindObjectBaseline,
	KindVillageComposite,
}

// Priority bands. User-visible work jumps ahead of background compositing.
const (
	PriorityBackground  = 0
	PriorityNormal      = 5
	PriorityInteractive = 10
)

const DefaultMaxAttempts = 3
