package database

import (
	"context"
	"database/sql"
	"fmt"

	"coworking_compliance/internal/domain/customer"
)

var ErrCustomerNotFound = fmt.Errorf("customer not found")

type PostgresCustomerRepository struct {
	db *sql.DB
}

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

// ListWithBilling loads all customers with their active package, then
// attaches payment history in chronological order. Two queries instead of
// one fanned-out join keeps scanning simple.
func (r *PostgresCustomerRepository) ListWithBilling(ctx context.Context) ([]*customer.Customer, error) {
	query := `SELECT c.id, c.name, c.email, c.account_status, c.created_at, c.updated_at,
                     p.id, p.name, p.expiry_date
              FROM customers c
              LEFT JOIN packages p ON p.id = c.package_id
              ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer
	byID := make(map[int64]*customer.Customer)
	for rows.Next() {
		c := customer.Customer{}
		var pkgID sql.NullInt64
		var pkgName sql.NullString
		var pkgExpiry sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.AccountStatus, &c.CreatedAt, &c.UpdatedAt,
			&pkgID, &pkgName, &pkgExpiry); err != nil {
			return nil, fmt.Errorf("error scanning customer row: %w", err)
		}
		if pkgID.Valid {
			c.Package = &customer.Package{
				ID:         pkgID.Int64,
				Name:       pkgName.String,
				ExpiryDate: pkgExpiry.Time,
			}
		}
		customers = append(customers, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}
	if len(customers) == 0 {
		return customers, nil
	}

	payQuery := `SELECT customer_id, id, amount, status, paid_at
                 FROM payments
                 ORDER BY customer_id, id`
	payRows, err := r.db.QueryContext(ctx, payQuery)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var customerID int64
		p := customer.Payment{}
		if err := payRows.Scan(&customerID, &p.ID, &p.Amount, &p.Status, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("error scanning payment row: %w", err)
		}
		if c, ok := byID[customerID]; ok {
			c.Payments = append(c.Payments, p)
		}
	}
	if err := payRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return customers, nil
}

// UpdateAccountStatus transitions account_status only when the current
// value matches 'from', so two concurrent passes cannot both count the
// change.
func (r *PostgresCustomerRepository) UpdateAccountStatus(ctx context.Context, id int64, from, to customer.AccountStatus) (bool, error) {
	query := `UPDATE customers
              SET account_status = $1, updated_at = NOW()
              WHERE id = $2 AND account_status = $3`
	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("error updating account status for customer %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for customer %d: %w", id, err)
	}
	return n > 0, nil
}
