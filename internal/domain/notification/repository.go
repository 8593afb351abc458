package notification

import "context"

// Repository appends notification records for customers.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
}
