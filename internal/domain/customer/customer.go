package customer

import (
	"database/sql"
	"time"
)

// AccountStatus is the lock state of a customer account. The engine moves
// ACTIVE -> LOCKED on package expiry and LOCKED -> ACTIVE on a qualifying
// payment; manual overrides live in the admin CRUD layer, not here.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountLocked AccountStatus = "LOCKED"
)

// PaymentStatus mirrors the payment gateway outcome.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Package is the subscription a customer holds (at most one active).
type Package struct {
	ID         int64
	Name       string
	ExpiryDate time.Time
}

// Payment is one payment record. PaidAt is set when the payment completed.
type Payment struct {
	ID     int64
	Amount float64
	Status PaymentStatus
	PaidAt sql.NullTime
}

// Customer is a coworking member joined with billing state. Payments are
// in insertion order, which is chronological.
type Customer struct {
	ID            int64
	Name          string
	Email         string
	AccountStatus AccountStatus
	Package       *Package // nil when no active package
	Payments      []Payment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasCompletedPaymentSince reports whether any completed payment landed at
// or after the cutoff.
func (c *Customer) HasCompletedPaymentSince(cutoff time.Time) bool {
	for _, p := range c.Payments {
		if p.Status != PaymentCompleted || !p.PaidAt.Valid {
			continue
		}
		if !p.PaidAt.Time.Before(cutoff) {
			return true
		}
	}
	return false
}
