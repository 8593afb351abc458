package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"coworking_compliance/internal/domain/task"
)

// Custom errors specific to the task repository.
var ErrTaskNotFound = fmt.Errorf("task not found")
var ErrDuplicateSpawn = fmt.Errorf("duplicate task spawn (origin_task_id, due_date)")

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

const taskColumns = `id, title, description, department, priority, due_date, status,
       is_recurring, recurring_type, recurring_interval, recurring_time_of_day, recurring_end_date,
       fine_amount, fine_applied, assigned_to, created_by, branch_id, origin_task_id,
       created_at, updated_at`

func (r *PostgresTaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO compliance_tasks
              (title, description, department, priority, due_date, status,
               is_recurring, recurring_type, recurring_interval, recurring_time_of_day, recurring_end_date,
               fine_amount, fine_applied, assigned_to, created_by, branch_id, origin_task_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
              RETURNING id, created_at, updated_at`
	recType, recInterval, recTimeOfDay, recEndDate := patternColumns(t.Pattern)
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Department, t.Priority, t.DueDate, t.Status,
		t.IsRecurring, recType, recInterval, recTimeOfDay, recEndDate,
		t.FineAmount, t.FineApplied, t.AssignedTo, t.CreatedBy, t.BranchID, t.OriginTaskID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM compliance_tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("error getting task by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM compliance_tasks ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// MarkOverdue flips a task to OVERDUE only while it is still open. The
// WHERE clause makes the transition atomically visible: concurrent passes
// cannot both observe a change.
func (r *PostgresTaskRepository) MarkOverdue(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE compliance_tasks
              SET status = $1, updated_at = NOW()
              WHERE id = $2 AND status IN ($3, $4)`
	res, err := r.db.ExecContext(ctx, query, task.StatusOverdue, id, task.StatusOpen, task.StatusInProgress)
	if err != nil {
		return false, fmt.Errorf("error marking task %d overdue: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for task %d: %w", id, err)
	}
	return n > 0, nil
}

// MarkFineApplied sets the fine flag only if it is currently unset.
func (r *PostgresTaskRepository) MarkFineApplied(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE compliance_tasks
              SET fine_applied = TRUE, updated_at = NOW()
              WHERE id = $1 AND fine_applied = FALSE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error setting fine flag on task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for task %d: %w", id, err)
	}
	return n > 0, nil
}

// CreateSpawn inserts the next instance of a recurring task. The unique
// constraint task_origin_due_unique on (origin_task_id, due_date) guards
// the read-then-write race between concurrent passes.
func (r *PostgresTaskRepository) CreateSpawn(ctx context.Context, t *task.Task) error {
	err := r.Create(ctx, t)
	if err != nil && strings.Contains(err.Error(), "task_origin_due_unique") {
		return ErrDuplicateSpawn
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := task.Task{}
	var recType sql.NullString
	var recInterval sql.NullInt64
	var recTimeOfDay sql.NullString
	var recEndDate sql.NullTime
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Department, &t.Priority, &t.DueDate, &t.Status,
		&t.IsRecurring, &recType, &recInterval, &recTimeOfDay, &recEndDate,
		&t.FineAmount, &t.FineApplied, &t.AssignedTo, &t.CreatedBy, &t.BranchID, &t.OriginTaskID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if recType.Valid {
		t.Pattern = &task.RecurringPattern{
			Type:      task.PatternType(recType.String),
			Interval:  int(recInterval.Int64),
			TimeOfDay: recTimeOfDay.String,
			EndDate:   recEndDate,
		}
	}
	return &t, nil
}

func patternColumns(p *task.RecurringPattern) (sql.NullString, sql.NullInt64, sql.NullString, sql.NullTime) {
	if p == nil {
		return sql.NullString{}, sql.NullInt64{}, sql.NullString{}, sql.NullTime{}
	}
	timeOfDay := sql.NullString{}
	if p.TimeOfDay != "" {
		timeOfDay = sql.NullString{String: p.TimeOfDay, Valid: true}
	}
	return sql.NullString{String: string(p.Type), Valid: true},
		sql.NullInt64{Int64: int64(p.Interval), Valid: true},
		timeOfDay,
		p.EndDate
}
