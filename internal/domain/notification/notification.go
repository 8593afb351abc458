package notification

import "time"

// Type distinguishes the notification templates the engine produces.
type Type string

const (
	TypeAccountLocked   Type = "ACCOUNT_LOCKED"
	TypeAccountUnlocked Type = "ACCOUNT_UNLOCKED"
)

// Notification is an in-app message for a customer. Delivery (email, SMS)
// is a downstream concern; the engine only appends records.
// Corresponds to the 'notifications' table.
type Notification struct {
	ID         int64
	CustomerID int64
	Type       Type
	Title      string
	Message    string
	IsRead     bool
	CreatedAt  time.Time
}
