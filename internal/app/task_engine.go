package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coworking_compliance/internal/domain/ledger"
	"coworking_compliance/internal/domain/task"
	idb "coworking_compliance/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// TaskEngine sweeps the task store once per invocation: flips overdue
// statuses, applies fines at most once, and spawns the next instance of
// recurring tasks that reached a terminal state.
//
// The sweep is best-effort, not a transaction: a failure on one task is
// logged and counted, and the pass continues with the rest.
type TaskEngine struct {
	taskRepo   task.Repository
	ledgerRepo ledger.Repository
	logger     *logrus.Entry
}

func NewTaskEngine(tr task.Repository, lr ledger.Repository, logger *logrus.Entry) *TaskEngine {
	return &TaskEngine{taskRepo: tr, ledgerRepo: lr, logger: logger}
}

// RunPass processes every task against the given instant. Re-running with
// the same store state and clock is a no-op. Always returns a report, even
// when the store is down; cancellation stops the sweep between tasks and
// the partial report is still returned.
func (e *TaskEngine) RunPass(ctx context.Context, now time.Time) *TaskPassReport {
	report := &TaskPassReport{}

	tasks, err := e.taskRepo.ListAll(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Task pass aborted: could not list tasks")
		report.Errors++
		return report
	}
	e.logger.WithField("count", len(tasks)).Debug("Task pass started")

	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).Warn("Task pass cut off before finishing the sweep")
			report.Errors++
			break
		}
		e.processTask(ctx, t, now, report)
	}
	return report
}

func (e *TaskEngine) processTask(ctx context.Context, t *task.Task, now time.Time, report *TaskPassReport) {
	log := e.logger.WithField("task_id", t.ID)

	// 1. Overdue detection. The conditional update only fires while the
	// task is still OPEN/IN_PROGRESS, so re-runs and concurrent passes
	// cannot count the same flip twice.
	if (t.Status == task.StatusOpen || t.Status == task.StatusInProgress) && t.DueDate.Before(now) {
		changed, err := e.taskRepo.MarkOverdue(ctx, t.ID)
		if err != nil {
			log.WithError(err).Error("Failed to mark task overdue")
			report.Errors++
			return
		}
		t.Status = task.StatusOverdue
		if changed {
			report.TasksOverdued++
			report.Details = append(report.Details, Detail{
				Entity: "task", ID: t.ID, Action: ActionOverdue,
				Message: fmt.Sprintf("due %s, marked overdue", t.DueDate.Format(time.RFC3339)),
			})
		}
	}

	// 2. Fine application. The flag is flipped first under a conditional
	// update: at most one pass wins it, so the ledger row is written at
	// most once per task.
	if t.Status == task.StatusOverdue && t.FineAmount.Valid && !t.FineApplied {
		changed, err := e.taskRepo.MarkFineApplied(ctx, t.ID)
		if err != nil {
			log.WithError(err).Error("Failed to set fine flag")
			report.Errors++
			return
		}
		if changed {
			t.FineApplied = true
			adj := &ledger.Adjustment{
				TaskID:   t.ID,
				BranchID: t.BranchID,
				Amount:   t.FineAmount.Float64,
				Reason:   fmt.Sprintf("fine: task %q missed its due date", t.Title),
			}
			if err := e.ledgerRepo.Create(ctx, adj); err != nil {
				log.WithError(err).Error("Fine flag set but ledger adjustment failed; needs manual repair")
				report.Errors++
			} else {
				report.FinesApplied++
				report.Details = append(report.Details, Detail{
					Entity: "task", ID: t.ID, Action: ActionFineApplied,
					Message: fmt.Sprintf("fine of %.2f recorded", t.FineAmount.Float64),
				})
			}
		}
	}

	// 3. Recurrence spawn, driven off the task's own due date so late or
	// repeated triggers do not skip generations. The originating task is
	// left untouched as history.
	if t.IsRecurring && t.IsTerminal() {
		if t.Pattern == nil {
			log.Warn("Recurring task has no pattern; skipping spawn")
			return
		}
		if err := t.Pattern.Validate(); err != nil {
			log.WithError(err).Warn("Recurring task has an invalid pattern; treating as non-recurring")
			return
		}
		nextDue, ok := task.NextDue(*t.Pattern, t.DueDate, now)
		if !ok {
			return
		}
		spawn := t.SpawnNext(nextDue)
		err := e.taskRepo.CreateSpawn(ctx, spawn)
		switch {
		case errors.Is(err, idb.ErrDuplicateSpawn):
			log.Debug("Next instance already exists; another pass spawned it")
		case err != nil:
			log.WithError(err).Error("Failed to spawn next task instance")
			report.Errors++
		default:
			report.TasksSpawned++
			report.Details = append(report.Details, Detail{
				Entity: "task", ID: t.ID, Action: ActionSpawned,
				Message: fmt.Sprintf("spawned instance %d due %s", spawn.ID, nextDue.Format(time.RFC3339)),
			})
		}
	}
}
