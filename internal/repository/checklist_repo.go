package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/derived"
	"studioboard/internal/model"
)

type ChecklistRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChecklistRepository(db *pgxpool.Pool, logger *zap.Logger) *ChecklistRepository {
	return &ChecklistRepository{db: db, logger: logger}
}

func (r *ChecklistRepository) Insert(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) (int, error) {
	query := `
        INSERT INTO checklist_items (task_id, label, done, position)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query,
		item.TaskID,
		item.Label,
		item.Done,
		item.Position,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert checklist item",
			zap.Int("task_id", item.TaskID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id int) (*model.ChecklistItem, error) {
	query := `
        SELECT id, task_id, label, done, position
        FROM checklist_items
        WHERE id = $1
    `
	var item model.ChecklistItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.TaskID,
		&item.Label,
		&item.Done,
		&item.Position,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) ListByTask(ctx context.Context, taskID int) ([]model.ChecklistItem, error) {
	query := `
        SELECT id, task_id, label, done, position
        FROM checklist_items
        WHERE task_id = $1
        ORDER BY position ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ChecklistItem
	for rows.Next() {
		var item model.ChecklistItem
		err := rows.Scan(&item.ID, &item.TaskID, &item.Label, &item.Done, &item.Position)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ChecklistRepository) Update(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) error {
	_, err := tx.Exec(ctx,
		`UPDATE checklist_items SET label = $1, done = $2, position = $3 WHERE id = $4`,
		item.Label, item.Done, item.Position, item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update checklist item", zap.Int("id", item.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *ChecklistRepository) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx, `DELETE FROM checklist_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete checklist item", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Counts returns the checklist tally the task progress is derived from.
func (r *ChecklistRepository) Counts(ctx context.Context, taskID int) (derived.ChecklistCounts, error) {
	var c derived.ChecklistCounts
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE done)
        FROM checklist_items
        WHERE task_id = $1
    `, taskID).Scan(&c.Total, &c.Done)
	if err != nil {
		return derived.ChecklistCounts{}, err
	}
	return c, nil
}
