package customer

import "context"

// Repository defines the store operations the account engine needs.
type Repository interface {
	// ListWithBilling returns all customers joined with their active
	// package and payment history.
	ListWithBilling(ctx context.Context) ([]*Customer, error)

	// UpdateAccountStatus transitions a customer's account status only if
	// it currently equals 'from'. Returns whether a row actually changed,
	// so concurrent passes converge without double-acting.
	UpdateAccountStatus(ctx context.Context, id int64, from, to AccountStatus) (bool, error)
}
