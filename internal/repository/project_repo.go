package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, tx pgx.Tx, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("owner_id", p.OwnerID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (owner_id, name, description, platform, genre, status,
                              start_date, target_date, initial_budget, progress, spent, remaining,
                              created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '0%', 0, $9, NOW(), NOW())
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query,
		p.OwnerID,
		p.Name,
		p.Description,
		p.Platform,
		p.Genre,
		p.Status,
		p.StartDate,
		p.TargetDate,
		p.InitialBudget,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", id),
		zap.Int("owner_id", p.OwnerID),
	)
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, owner_id, name, description, platform, genre, status,
               start_date, target_date, initial_budget, progress, spent, remaining,
               created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.Platform,
		&p.Genre,
		&p.Status,
		&p.StartDate,
		&p.TargetDate,
		&p.InitialBudget,
		&p.Progress,
		&p.Spent,
		&p.Remaining,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns projects the user owns or is a member of, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT DISTINCT p.id, p.owner_id, p.name, p.description, p.platform, p.genre, p.status,
               p.start_date, p.target_date, p.initial_budget, p.progress, p.spent, p.remaining,
               p.created_at, p.updated_at
        FROM projects p
        LEFT JOIN project_members m ON m.project_id = p.id
        WHERE p.owner_id = $1 OR m.user_id = $1
        ORDER BY p.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Name,
			&p.Description,
			&p.Platform,
			&p.Genre,
			&p.Status,
			&p.StartDate,
			&p.TargetDate,
			&p.InitialBudget,
			&p.Progress,
			&p.Spent,
			&p.Remaining,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $1, description = $2, platform = $3, genre = $4, status = $5,
            start_date = $6, target_date = $7, initial_budget = $8, updated_at = NOW()
        WHERE id = $9
    `
	_, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Platform,
		p.Genre,
		p.Status,
		p.StartDate,
		p.TargetDate,
		p.InitialBudget,
		p.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Int("id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Int("id", id), zap.Error(err))
		return err
	}
	r.logger.Info("Project deleted", zap.Int("id", id))
	return nil
}

// UpdateProgress writes the derived progress cache back onto the project row.
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id int, progress string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET progress = $1, updated_at = NOW() WHERE id = $2`,
		progress, id,
	)
	if err != nil {
		r.logger.Error("Failed to update project progress",
			zap.Int("id", id),
			zap.String("progress", progress),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// UpdateBudgetRollup writes the derived spent/remaining caches back onto the
// project row.
func (r *ProjectRepository) UpdateBudgetRollup(ctx context.Context, id int, spent, remaining float64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE projects SET spent = $1, remaining = $2, updated_at = NOW() WHERE id = $3`,
		spent, remaining, id,
	)
	if err != nil {
		r.logger.Error("Failed to update project budget rollup",
			zap.Int("id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
