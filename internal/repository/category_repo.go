package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
)

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

func (r *CategoryRepository) Insert(ctx context.Context, tx pgx.Tx, c *model.BudgetCategory) (int, error) {
	query := `
        INSERT INTO budget_categories (project_id, name, allocation)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query, c.ProjectID, c.Name, c.Allocation).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert budget category",
			zap.Int("project_id", c.ProjectID),
			zap.String("name", c.Name),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*model.BudgetCategory, error) {
	query := `
        SELECT id, project_id, name, allocation
        FROM budget_categories
        WHERE id = $1
    `
	var c model.BudgetCategory
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.ProjectID, &c.Name, &c.Allocation)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) ListByProject(ctx context.Context, projectID int) ([]model.BudgetCategory, error) {
	query := `
        SELECT id, project_id, name, allocation
        FROM budget_categories
        WHERE project_id = $1
        ORDER BY name ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.BudgetCategory
	for rows.Next() {
		var c model.BudgetCategory
		err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Allocation)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.BudgetCategory) error {
	_, err := r.db.Exec(ctx,
		`UPDATE budget_categories SET name = $1, allocation = $2 WHERE id = $3`,
		c.Name, c.Allocation, c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update budget category", zap.Int("id", c.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM budget_categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete budget category", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}
