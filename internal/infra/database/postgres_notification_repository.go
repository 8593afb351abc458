package database

import (
	"context"
	"database/sql"
	"fmt"

	"coworking_compliance/internal/domain/notification"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `INSERT INTO notifications (customer_id, type, title, message, is_read)
              VALUES ($1, $2, $3, $4, FALSE)
              RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, n.CustomerID, n.Type, n.Title, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}
