package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Alerter receives a finished report, e.g. to forward a summary to an admin
// chat. Implementations must not block for long; Run calls it inline.
type Alerter interface {
	PassCompleted(report *Report)
}

// Runner executes one full compliance pass: tasks first, then accounts,
// both against the same instant. The scheduled trigger and the manual HTTP
// trigger call the same Run method, so there is no behavioral difference
// between the two paths.
type Runner struct {
	tasks    *TaskEngine
	accounts *AccountEngine
	logger   *logrus.Entry
	alerter  Alerter // optional

	mu   sync.Mutex
	last *Report
}

func NewRunner(tasks *TaskEngine, accounts *AccountEngine, logger *logrus.Entry, alerter Alerter) *Runner {
	return &Runner{tasks: tasks, accounts: accounts, logger: logger, alerter: alerter}
}

// Run performs one pass and retains the report for later inspection.
// Concurrent invocations are safe: every mutation the engines make is a
// conditional update derived from persisted state.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{StartedAt: time.Now()}
	report.Tasks = r.tasks.RunPass(ctx, report.StartedAt)
	report.Accounts = r.accounts.RunPass(ctx, report.StartedAt)
	report.FinishedAt = time.Now()

	r.logger.WithFields(logrus.Fields{
		"duration":           report.FinishedAt.Sub(report.StartedAt).String(),
		"tasks_overdued":     report.Tasks.TasksOverdued,
		"fines_applied":      report.Tasks.FinesApplied,
		"tasks_spawned":      report.Tasks.TasksSpawned,
		"accounts_locked":    report.Accounts.AccountsLocked,
		"accounts_unlocked":  report.Accounts.AccountsUnlocked,
		"notifications_sent": report.Accounts.NotificationsSent,
		"errors":             report.Tasks.Errors + report.Accounts.Errors,
	}).Info("Compliance pass finished")

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	if r.alerter != nil {
		r.alerter.PassCompleted(report)
	}
	return report
}

// LastReport returns the most recent report, or nil before the first run.
func (r *Runner) LastReport() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
