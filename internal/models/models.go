package models

import "time"

type TaskKind string

const (
	KindTimeBased     TaskKind = "time-based"
	KindDistanceBased TaskKind = "distance-based"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusUpcoming Status = "upcoming"
	StatusOverdue  Status = "overdue"
)

// MaintenanceTask is a recurring maintenance definition. Exactly one of
// Interval and DistanceInterval is meaningful, selected by Kind; CreatedByUser
// is orthogonal to that axis and only affects presentation and the id scheme.
type MaintenanceTask struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Kind          TaskKind `json:"kind"`
	CreatedByUser bool     `json:"createdByUser,omitempty"`

	// Interval is persisted verbatim as entered: one of the fixed interval
	// names, an "N days" form, or any other user string.
	Interval         string  `json:"interval,omitempty"`
	DistanceInterval float64 `json:"kilometers,omitempty"`

	LastCompletedAt         *time.Time `json:"lastCompletedAt,omitempty"`
	NextDueAt               *time.Time `json:"nextDueAt,omitempty"`
	LastCompletedAtDistance *float64   `json:"lastCompletedAtKm,omitempty"`
	NextDueAtDistance       *float64   `json:"nextDueAtKm,omitempty"`

	Tags     []string `json:"tags,omitempty"`
	Subtasks []string `json:"subtasks,omitempty"`

	// CompletionHistory is append-only, in append order. Consumers that need
	// chronological order must sort by CompletionDate themselves.
	CompletionHistory []CompletionRecord `json:"completionHistory,omitempty"`

	IsRecurring bool `json:"isRecurring"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CompletionRecord is an immutable log entry for one performed maintenance
// event. Title and Kind are copied from the task at completion time so history
// stays correct after the task is edited or deleted. NextDueAt and
// NextDueAtDistance are snapshots of the due point computed when the record
// was created and are never recomputed.
type CompletionRecord struct {
	ID                   string     `json:"id"`
	TaskID               string     `json:"taskId"`
	Title                string     `json:"title"`
	Kind                 TaskKind   `json:"kind"`
	CompletionDate       time.Time  `json:"completionDate"`
	Cost                 float64    `json:"cost"`
	OdometerAtCompletion *float64   `json:"odometerAtCompletion,omitempty"`
	NextDueAt            *time.Time `json:"nextDueAt,omitempty"`
	NextDueAtDistance    *float64   `json:"nextDueAtKm,omitempty"`
	Notes                string     `json:"notes,omitempty"`
}

// DateRange selects completion records at day granularity, inclusive on both
// bounds. AllTime short-circuits all filtering.
type DateRange struct {
	Start   time.Time
	End     time.Time
	AllTime bool
}
