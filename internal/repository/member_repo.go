package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studioboard/internal/model"
)

type MemberRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMemberRepository(db *pgxpool.Pool, logger *zap.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

func (r *MemberRepository) Insert(ctx context.Context, tx pgx.Tx, m *model.ProjectMember) (int, error) {
	query := `
        INSERT INTO project_members (project_id, user_id, display_name, role, added_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	var id int
	err := tx.QueryRow(ctx, query,
		m.ProjectID,
		m.UserID,
		m.DisplayName,
		m.Role,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project member",
			zap.Int("project_id", m.ProjectID),
			zap.Int("user_id", m.UserID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *MemberRepository) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx, `DELETE FROM project_members WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project member", zap.Int("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int) (*model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, display_name, role, added_at
        FROM project_members
        WHERE id = $1
    `
	var m model.ProjectMember
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.ProjectID,
		&m.UserID,
		&m.DisplayName,
		&m.Role,
		&m.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) ListByProject(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	query := `
        SELECT id, project_id, user_id, display_name, role, added_at
        FROM project_members
        WHERE project_id = $1
        ORDER BY added_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.ProjectMember
	for rows.Next() {
		var m model.ProjectMember
		err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.DisplayName, &m.Role, &m.AddedAt)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetRole returns the user's role on the project, or pgx.ErrNoRows if the
// user is not on the roster.
func (r *MemberRepository) GetRole(ctx context.Context, projectID, userID int) (string, error) {
	var role string
	err := r.db.QueryRow(ctx,
		`SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}
