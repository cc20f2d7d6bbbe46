package tasks

import "time"

// Task Types
const (
	// Grant maintenance tasks
	TaskTypeGrantsSync  = "grants:sync"
	TaskTypeGrantsAudit = "grants:audit"
)

// Task Queues
const (
	QueueCritical = "critical" // For grant syncs triggered by template changes
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like audits
)

// Task Priorities (1-10, higher is more important)
const (
	PriorityCritical = 10
	PriorityHigh     = 8
	PriorityNormal   = 5
	PriorityLow      = 3
	PriorityBG       = 1
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// GrantsSyncPayload carries the event whose grants need re-normalizing and
// the brand whose template change triggered it.
type GrantsSyncPayload struct {
	EventID string `json:"eventId"`
	BrandID string `json:"brandId"`
}
