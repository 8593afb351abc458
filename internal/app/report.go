package app

import "time"

// Actions recorded in pass report details.
const (
	ActionOverdue     = "overdue"
	ActionFineApplied = "fine_applied"
	ActionSpawned     = "spawned"
	ActionLocked      = "locked"
	ActionUnlocked    = "unlocked"
)

// Detail is one audit line in a pass report: which entity was touched and
// what the engine did to it.
type Detail struct {
	Entity  string `json:"entity"` // "task" or "customer"
	ID      int64  `json:"id"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// TaskPassReport summarizes one sweep of the task lifecycle engine.
type TaskPassReport struct {
	TasksOverdued int      `json:"tasksOverdued"`
	FinesApplied  int      `json:"finesApplied"`
	TasksSpawned  int      `json:"tasksSpawned"`
	Errors        int      `json:"errors"`
	Details       []Detail `json:"details"`
}

// AccountPassReport summarizes one sweep of the account lifecycle engine.
type AccountPassReport struct {
	AccountsLocked    int      `json:"accountsLocked"`
	AccountsUnlocked  int      `json:"accountsUnlocked"`
	NotificationsSent int      `json:"notificationsSent"`
	Errors            int      `json:"errors"`
	Details           []Detail `json:"details"`
}

// Report is the combined result of one compliance run, returned to whatever
// triggered it (scheduler tick or admin HTTP call).
type Report struct {
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
	Tasks      *TaskPassReport    `json:"tasks"`
	Accounts   *AccountPassReport `json:"accounts"`
}
