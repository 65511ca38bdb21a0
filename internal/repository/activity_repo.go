package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
)

type ActivityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Insert(ctx context.Context, e *model.ActivityEntry) error {
	query := `
        INSERT INTO activity_log (project_id, user_id, kind, detail, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		e.ProjectID,
		e.UserID,
		e.Kind,
		e.Detail,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert activity entry",
			zap.Int("project_id", e.ProjectID),
			zap.String("kind", e.Kind),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// clampPage normalizes client-supplied paging so it never reaches the query
// out of range. Postgres rejects a negative OFFSET outright.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListByProject returns activity entries newest first.
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID, limit, offset int) ([]model.ActivityEntry, error) {
	limit, offset = clampPage(limit, offset)

	query := `
        SELECT id, project_id, user_id, kind, detail, created_at
        FROM activity_log
        WHERE project_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.Kind, &e.Detail, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
