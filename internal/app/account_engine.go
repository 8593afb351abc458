package app

import (
	"context"
	"fmt"
	"time"

	"coworking_compliance/internal/domain/customer"
	"coworking_compliance/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// AccountEngine locks customer accounts whose package expired beyond the
// grace period and unlocks locked accounts with a recent completed payment.
// The lock phase always runs before the unlock phase, and a customer
// touched by the lock phase is excluded from the unlock phase, so one pass
// never both locks and unlocks the same account.
type AccountEngine struct {
	custRepo     customer.Repository
	notifRepo    notification.Repository
	logger       *logrus.Entry
	gracePeriod  time.Duration // tolerance after package expiry before locking
	unlockWindow time.Duration // how recent a payment must be to unlock
}

func NewAccountEngine(
	cr customer.Repository,
	nr notification.Repository,
	logger *logrus.Entry,
	gracePeriod, unlockWindow time.Duration,
) *AccountEngine {
	return &AccountEngine{
		custRepo:     cr,
		notifRepo:    nr,
		logger:       logger,
		gracePeriod:  gracePeriod,
		unlockWindow: unlockWindow,
	}
}

// RunPass evaluates every customer against the given instant. All decisions
// derive from persisted state, so re-running with no new payments changes
// nothing. Always returns a report; per-customer failures are logged and
// counted without aborting the sweep.
func (e *AccountEngine) RunPass(ctx context.Context, now time.Time) *AccountPassReport {
	report := &AccountPassReport{}

	customers, err := e.custRepo.ListWithBilling(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Account pass aborted: could not list customers")
		report.Errors++
		return report
	}
	e.logger.WithField("count", len(customers)).Debug("Account pass started")

	lockedThisPass := make(map[int64]bool)

	// Lock phase.
	for _, c := range customers {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).Warn("Account pass cut off during lock phase")
			report.Errors++
			return report
		}
		e.evaluateLock(ctx, c, now, report, lockedThisPass)
	}

	// Unlock phase.
	for _, c := range customers {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).Warn("Account pass cut off during unlock phase")
			report.Errors++
			return report
		}
		if c.AccountStatus != customer.AccountLocked || lockedThisPass[c.ID] {
			continue
		}
		e.evaluateUnlock(ctx, c, now, report)
	}
	return report
}

func (e *AccountEngine) evaluateLock(ctx context.Context, c *customer.Customer, now time.Time, report *AccountPassReport, lockedThisPass map[int64]bool) {
	if c.AccountStatus != customer.AccountActive || c.Package == nil {
		return
	}
	graceCutoff := now.Add(-e.gracePeriod)
	if !c.Package.ExpiryDate.Before(graceCutoff) {
		return
	}
	// A completed payment inside the grace window cures the expiry.
	if c.HasCompletedPaymentSince(graceCutoff) {
		return
	}

	log := e.logger.WithField("customer_id", c.ID)
	changed, err := e.custRepo.UpdateAccountStatus(ctx, c.ID, customer.AccountActive, customer.AccountLocked)
	if err != nil {
		log.WithError(err).Error("Failed to lock customer account")
		report.Errors++
		return
	}
	c.AccountStatus = customer.AccountLocked
	lockedThisPass[c.ID] = true
	if !changed {
		return
	}

	report.AccountsLocked++
	report.Details = append(report.Details, Detail{
		Entity: "customer", ID: c.ID, Action: ActionLocked,
		Message: fmt.Sprintf("package expired %s, no payment within grace period", c.Package.ExpiryDate.Format("2006-01-02")),
	})
	e.notify(ctx, report, &notification.Notification{
		CustomerID: c.ID,
		Type:       notification.TypeAccountLocked,
		Title:      "Account locked",
		Message: fmt.Sprintf("Your package expired on %s and no payment was received. Please contact support to restore access.",
			c.Package.ExpiryDate.Format("2006-01-02")),
	})
}

func (e *AccountEngine) evaluateUnlock(ctx context.Context, c *customer.Customer, now time.Time, report *AccountPassReport) {
	if !c.HasCompletedPaymentSince(now.Add(-e.unlockWindow)) {
		return
	}

	log := e.logger.WithField("customer_id", c.ID)
	changed, err := e.custRepo.UpdateAccountStatus(ctx, c.ID, customer.AccountLocked, customer.AccountActive)
	if err != nil {
		log.WithError(err).Error("Failed to unlock customer account")
		report.Errors++
		return
	}
	c.AccountStatus = customer.AccountActive
	if !changed {
		return
	}

	report.AccountsUnlocked++
	report.Details = append(report.Details, Detail{
		Entity: "customer", ID: c.ID, Action: ActionUnlocked,
		Message: "recent completed payment, account reactivated",
	})
	e.notify(ctx, report, &notification.Notification{
		CustomerID: c.ID,
		Type:       notification.TypeAccountUnlocked,
		Title:      "Account unlocked",
		Message:    "We received your payment. Your account is active again.",
	})
}

func (e *AccountEngine) notify(ctx context.Context, report *AccountPassReport, n *notification.Notification) {
	if err := e.notifRepo.Create(ctx, n); err != nil {
		e.logger.WithError(err).WithField("customer_id", n.CustomerID).Error("Failed to create notification")
		report.Errors++
		return
	}
	report.NotificationsSent++
}
