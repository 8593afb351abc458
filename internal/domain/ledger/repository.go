package ledger

import "context"

// Repository appends accounting adjustments.
type Repository interface {
	Create(ctx context.Context, a *Adjustment) error
}
