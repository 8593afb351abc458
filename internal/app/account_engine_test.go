package app

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"coworking_compliance/internal/domain/customer"
	"coworking_compliance/internal/domain/notification"
)

// stubCustomerRepo implements customer.Repository in memory with the same
// conditional-update semantics as the Postgres store.
type stubCustomerRepo struct {
	customers []*customer.Customer
	updateErr map[int64]error
	listErr   error
}

func (r *stubCustomerRepo) ListWithBilling(_ context.Context) ([]*customer.Customer, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*customer.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		if c.Package != nil {
			pkg := *c.Package
			cp.Package = &pkg
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubCustomerRepo) UpdateAccountStatus(_ context.Context, id int64, from, to customer.AccountStatus) (bool, error) {
	if err := r.updateErr[id]; err != nil {
		return false, err
	}
	for _, c := range r.customers {
		if c.ID == id && c.AccountStatus == from {
			c.AccountStatus = to
			return true, nil
		}
	}
	return false, nil
}

type stubNotificationRepo struct {
	notifications []*notification.Notification
	createErr     error
}

func (r *stubNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = int64(len(r.notifications) + 1)
	r.notifications = append(r.notifications, n)
	return nil
}

func completedPayment(paidAt time.Time) customer.Payment {
	return customer.Payment{
		Status: customer.PaymentCompleted,
		PaidAt: sql.NullTime{Time: paidAt, Valid: true},
	}
}

func newAccountEngine(cr *stubCustomerRepo, nr *stubNotificationRepo) *AccountEngine {
	return NewAccountEngine(cr, nr, testLogger(), 72*time.Hour, 24*time.Hour)
}

func TestAccountPassLocksExpiredCustomer(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, Name: "Acme Ltd", AccountStatus: customer.AccountActive,
		Package: &customer.Package{ExpiryDate: now.Add(-4 * 24 * time.Hour)},
	}}}
	notifRepo := &stubNotificationRepo{}
	engine := newAccountEngine(repo, notifRepo)

	report := engine.RunPass(context.Background(), now)

	if report.AccountsLocked != 1 || report.AccountsUnlocked != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if repo.customers[0].AccountStatus != customer.AccountLocked {
		t.Fatal("customer not locked")
	}
	if len(notifRepo.notifications) != 1 || notifRepo.notifications[0].Type != notification.TypeAccountLocked {
		t.Fatalf("unexpected notifications: %+v", notifRepo.notifications)
	}
	if report.NotificationsSent != 1 {
		t.Fatalf("notificationsSent = %d", report.NotificationsSent)
	}
}

func TestAccountPassPaymentWithinGraceCuresExpiry(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, AccountStatus: customer.AccountActive,
		Package:  &customer.Package{ExpiryDate: now.Add(-4 * 24 * time.Hour)},
		Payments: []customer.Payment{completedPayment(now.Add(-2 * 24 * time.Hour))},
	}}}
	notifRepo := &stubNotificationRepo{}
	engine := newAccountEngine(repo, notifRepo)

	report := engine.RunPass(context.Background(), now)

	if report.AccountsLocked != 0 || len(notifRepo.notifications) != 0 {
		t.Fatalf("cured customer was locked: %+v", report)
	}
	if repo.customers[0].AccountStatus != customer.AccountActive {
		t.Fatal("customer status changed")
	}
}

func TestAccountPassIgnoresPendingAndFailedPayments(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, AccountStatus: customer.AccountActive,
		Package: &customer.Package{ExpiryDate: now.Add(-4 * 24 * time.Hour)},
		Payments: []customer.Payment{
			{Status: customer.PaymentPending, PaidAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}},
			{Status: customer.PaymentFailed, PaidAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}},
		},
	}}}
	engine := newAccountEngine(repo, &stubNotificationRepo{})

	report := engine.RunPass(context.Background(), now)
	if report.AccountsLocked != 1 {
		t.Fatalf("non-completed payments should not cure expiry: %+v", report)
	}
}

func TestAccountPassUnlocksAfterRecentPayment(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, AccountStatus: customer.AccountLocked,
		Package:  &customer.Package{ExpiryDate: now.Add(-10 * 24 * time.Hour)},
		Payments: []customer.Payment{completedPayment(now.Add(-1 * time.Hour))},
	}}}
	notifRepo := &stubNotificationRepo{}
	engine := newAccountEngine(repo, notifRepo)

	report := engine.RunPass(context.Background(), now)

	if report.AccountsUnlocked != 1 || report.AccountsLocked != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if repo.customers[0].AccountStatus != customer.AccountActive {
		t.Fatal("customer not unlocked")
	}
	if len(notifRepo.notifications) != 1 || notifRepo.notifications[0].Type != notification.TypeAccountUnlocked {
		t.Fatalf("unexpected notifications: %+v", notifRepo.notifications)
	}
}

func TestAccountPassStalePaymentDoesNotUnlock(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, AccountStatus: customer.AccountLocked,
		Package:  &customer.Package{ExpiryDate: now.Add(-10 * 24 * time.Hour)},
		Payments: []customer.Payment{completedPayment(now.Add(-30 * time.Hour))},
	}}}
	engine := newAccountEngine(repo, &stubNotificationRepo{})

	report := engine.RunPass(context.Background(), now)
	if report.AccountsUnlocked != 0 {
		t.Fatalf("30h-old payment unlocked the account: %+v", report)
	}
}

func TestAccountPassIsIdempotent(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{
		{
			ID: 1, AccountStatus: customer.AccountActive,
			Package: &customer.Package{ExpiryDate: now.Add(-5 * 24 * time.Hour)},
		},
		{
			ID: 2, AccountStatus: customer.AccountLocked,
			Package:  &customer.Package{ExpiryDate: now.Add(-10 * 24 * time.Hour)},
			Payments: []customer.Payment{completedPayment(now.Add(-time.Hour))},
		},
	}}
	notifRepo := &stubNotificationRepo{}
	engine := newAccountEngine(repo, notifRepo)

	first := engine.RunPass(context.Background(), now)
	if first.AccountsLocked != 1 || first.AccountsUnlocked != 1 {
		t.Fatalf("unexpected first report: %+v", first)
	}

	second := engine.RunPass(context.Background(), now)
	if second.AccountsLocked != 0 || second.AccountsUnlocked != 0 || second.NotificationsSent != 0 {
		t.Fatalf("second pass not a no-op: %+v", second)
	}
	if len(notifRepo.notifications) != 2 {
		t.Fatalf("notifications duplicated: %d", len(notifRepo.notifications))
	}
}

// Customer 2 is unlocked by its recent payment while customer 1 is locked
// in the very same pass; neither may see both actions.
func TestAccountPassNeverLocksAndUnlocksSameCustomer(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{
		{
			ID: 1, AccountStatus: customer.AccountActive,
			Package: &customer.Package{ExpiryDate: now.Add(-5 * 24 * time.Hour)},
		},
		{
			ID: 2, AccountStatus: customer.AccountLocked,
			Package:  &customer.Package{ExpiryDate: now.Add(-10 * 24 * time.Hour)},
			Payments: []customer.Payment{completedPayment(now.Add(-time.Hour))},
		},
	}}
	engine := newAccountEngine(repo, &stubNotificationRepo{})

	report := engine.RunPass(context.Background(), now)

	seen := make(map[int64]map[string]bool)
	for _, d := range report.Details {
		if d.Action != ActionLocked && d.Action != ActionUnlocked {
			continue
		}
		if seen[d.ID] == nil {
			seen[d.ID] = make(map[string]bool)
		}
		seen[d.ID][d.Action] = true
	}
	for id, actions := range seen {
		if actions[ActionLocked] && actions[ActionUnlocked] {
			t.Fatalf("customer %d both locked and unlocked in one pass", id)
		}
	}
}

func TestAccountPassSkipsCustomersWithoutPackage(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{customers: []*customer.Customer{{
		ID: 1, AccountStatus: customer.AccountActive, Package: nil,
	}}}
	engine := newAccountEngine(repo, &stubNotificationRepo{})

	report := engine.RunPass(context.Background(), now)
	if report.AccountsLocked != 0 || report.Errors != 0 {
		t.Fatalf("package-less customer mishandled: %+v", report)
	}
}

func TestAccountPassContinuesAfterStoreFailure(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCustomerRepo{
		customers: []*customer.Customer{
			{
				ID: 1, AccountStatus: customer.AccountActive,
				Package: &customer.Package{ExpiryDate: now.Add(-5 * 24 * time.Hour)},
			},
			{
				ID: 2, AccountStatus: customer.AccountActive,
				Package: &customer.Package{ExpiryDate: now.Add(-5 * 24 * time.Hour)},
			},
		},
		updateErr: map[int64]error{1: fmt.Errorf("connection reset")},
	}
	engine := newAccountEngine(repo, &stubNotificationRepo{})

	report := engine.RunPass(context.Background(), now)
	if report.Errors != 1 || report.AccountsLocked != 1 {
		t.Fatalf("pass did not continue past the failing customer: %+v", report)
	}
	if repo.customers[1].AccountStatus != customer.AccountLocked {
		t.Fatal("second customer not processed")
	}
}
