package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/derived"
	"studioboard/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, tx pgx.Tx, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("name", t.Name),
	)

	query := `
        INSERT INTO tasks (project_id, name, description, status, priority, assignee_id,
                           role_tag, due_date, progress, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '0%', NOW(), NOW())
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query,
		t.ProjectID,
		t.Name,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.RoleTag,
		t.DueDate,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Task inserted successfully",
		zap.Int("id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, name, description, status, priority, assignee_id,
               role_tag, due_date, progress, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssigneeID,
		&t.RoleTag,
		&t.DueDate,
		&t.Progress,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	query := `
        SELECT id, project_id, name, description, status, priority, assignee_id,
               role_tag, due_date, progress, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Name,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.AssigneeID,
			&t.RoleTag,
			&t.DueDate,
			&t.Progress,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, tx pgx.Tx, t *model.Task) error {
	query := `
        UPDATE tasks
        SET name = $1, description = $2, status = $3, priority = $4, assignee_id = $5,
            role_tag = $6, due_date = $7, updated_at = NOW()
        WHERE id = $8
    `
	_, err := tx.Exec(ctx, query,
		t.Name,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.RoleTag,
		t.DueDate,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task", zap.Int("id", t.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status string) error {
	_, err := tx.Exec(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		r.logger.Error("Failed to update task status",
			zap.Int("id", id),
			zap.String("status", status),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Counts returns the task tally the project progress is derived from.
func (r *TaskRepository) Counts(ctx context.Context, projectID int) (derived.TaskCounts, error) {
	var c derived.TaskCounts
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
        FROM tasks
        WHERE project_id = $1
    `, projectID).Scan(&c.Total, &c.Completed)
	if err != nil {
		return derived.TaskCounts{}, err
	}
	return c, nil
}

// UpdateProgress writes the derived task progress cache back onto the task row.
func (r *TaskRepository) UpdateProgress(ctx context.Context, id int, progress string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET progress = $1, updated_at = NOW() WHERE id = $2`,
		progress, id,
	)
	if err != nil {
		r.logger.Error("Failed to update task progress",
			zap.Int("id", id),
			zap.String("progress", progress),
			zap.Error(err),
		)
		return err
	}
	return nil
}
