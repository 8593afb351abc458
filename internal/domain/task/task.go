package task

import (
	"database/sql"
	"time"
)

// Status represents the lifecycle state of an operational task.
// Human actions move OPEN -> IN_PROGRESS -> COMPLETED; the compliance
// engine moves OPEN/IN_PROGRESS -> OVERDUE. Nothing leaves COMPLETED.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusOverdue    Status = "OVERDUE"
)

// Task represents a recurring or one-off operational duty for a branch.
// Corresponds to the 'compliance_tasks' table.
type Task struct {
	ID           int64
	Title        string
	Description  string
	Department   string
	Priority     string
	DueDate      time.Time
	Status       Status
	IsRecurring  bool
	Pattern      *RecurringPattern // present iff IsRecurring
	FineAmount   sql.NullFloat64   // optional penalty for missing the due date
	FineApplied  bool
	AssignedTo   int64
	CreatedBy    int64
	BranchID     int64
	OriginTaskID sql.NullInt64 // set on instances spawned from a recurring task
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal reports whether the engine considers this task finished for
// recurrence purposes.
func (t *Task) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusOverdue
}

// SpawnNext builds the next instance of a recurring task. Descriptive
// fields carry over, the fine flag resets, and the new instance points back
// at the task that produced it.
func (t *Task) SpawnNext(nextDue time.Time) *Task {
	var pattern *RecurringPattern
	if t.Pattern != nil {
		p := *t.Pattern
		pattern = &p
	}
	return &Task{
		Title:        t.Title,
		Description:  t.Description,
		Department:   t.Department,
		Priority:     t.Priority,
		DueDate:      nextDue,
		Status:       StatusOpen,
		IsRecurring:  t.IsRecurring,
		Pattern:      pattern,
		FineAmount:   t.FineAmount,
		FineApplied:  false,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
		BranchID:     t.BranchID,
		OriginTaskID: sql.NullInt64{Int64: t.ID, Valid: true},
	}
}
