package database

import (
	"context"
	"database/sql"
	"fmt"

	"coworking_compliance/internal/domain/ledger"
)

type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) Create(ctx context.Context, a *ledger.Adjustment) error {
	query := `INSERT INTO ledger_adjustments (task_id, branch_id, amount, reason)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, a.TaskID, a.BranchID, a.Amount, a.Reason).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating ledger adjustment: %w", err)
	}
	return nil
}
