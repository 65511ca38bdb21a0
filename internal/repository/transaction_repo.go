package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
)

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

func (r *TransactionRepository) Insert(ctx context.Context, tx pgx.Tx, t *model.Transaction) (int, error) {
	r.logger.Debug("Inserting transaction",
		zap.Int("project_id", t.ProjectID),
		zap.String("type", t.Type),
		zap.Float64("amount", t.Amount),
	)

	query := `
        INSERT INTO transactions (project_id, description, amount, category, type, entry_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query,
		t.ProjectID,
		t.Description,
		t.Amount,
		t.Category,
		t.Type,
		t.EntryDate,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert transaction", zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int) (*model.Transaction, error) {
	query := `
        SELECT id, project_id, description, amount, category, type, entry_date, created_at
        FROM transactions
        WHERE id = $1
    `
	var t model.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Description,
		&t.Amount,
		&t.Category,
		&t.Type,
		&t.EntryDate,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListByProject(ctx context.Context, projectID int) ([]model.Transaction, error) {
	query := `
        SELECT id, project_id, description, amount, category, type, entry_date, created_at
        FROM transactions
        WHERE project_id = $1
        ORDER BY entry_date DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Description,
			&t.Amount,
			&t.Category,
			&t.Type,
			&t.EntryDate,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete transaction", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}
