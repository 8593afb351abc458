package task

import "context"

// Repository defines the store operations the compliance engine needs over
// tasks. Status transitions are conditional updates so two concurrent
// passes cannot double-apply a side effect.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	ListAll(ctx context.Context) ([]*Task, error)

	// MarkOverdue flips a task to OVERDUE only if it is currently OPEN or
	// IN_PROGRESS. Returns whether a row actually changed.
	MarkOverdue(ctx context.Context, id int64) (bool, error)

	// MarkFineApplied sets the fine flag only if it is currently unset.
	// Returns whether a row actually changed.
	MarkFineApplied(ctx context.Context, id int64) (bool, error)

	// CreateSpawn inserts the next instance of a recurring task. The store
	// enforces uniqueness on (origin task, due date) and returns
	// ErrDuplicateSpawn from the infra layer when another pass already
	// spawned the same instance.
	CreateSpawn(ctx context.Context, t *Task) error
}
