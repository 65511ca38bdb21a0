package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
	"studioboard/pkg/metrics"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (user_id, kind, content, read, created_at)
        VALUES ($1, $2, $3, false, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		n.UserID,
		n.Kind,
		n.Content,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert notification",
			zap.Int("user_id", n.UserID),
			zap.String("kind", n.Kind),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementNotificationCreated()
	return nil
}

// ListByUser returns the user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
        SELECT id, user_id, kind, content, read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Content, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}
