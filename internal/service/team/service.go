package team

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/model"
	"studioboard/internal/repository"
	"studioboard/internal/service/access"
	"studioboard/pkg/outbox"
	"studioboard/pkg/rbac"
)

var (
	ErrUserNotFound  = errors.New("no user with that email")
	ErrAlreadyMember = errors.New("user is already on the roster")
	ErrInvalidRole   = errors.New("invalid member role")
	ErrCannotRemove  = errors.New("the project owner cannot be removed")
)

// Service manages the project roster.
type Service struct {
	db      *pgxpool.Pool
	members *repository.MemberRepository
	users   *repository.UserRepository
	outbox  *outbox.Repository
	access  *access.Checker
	logger  *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	members *repository.MemberRepository,
	users *repository.UserRepository,
	outboxRepo *outbox.Repository,
	checker *access.Checker,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:      db,
		members: members,
		users:   users,
		outbox:  outboxRepo,
		access:  checker,
		logger:  logger,
	}
}

type AddInput struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

func (s *Service) List(ctx context.Context, userID, projectID int) ([]model.ProjectMember, error) {
	if err := s.access.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.members.ListByProject(ctx, projectID)
}

// AddMember puts an existing user on the roster. The owner role is assigned
// only at project creation and cannot be granted here.
func (s *Service) AddMember(ctx context.Context, actorID, projectID int, input AddInput) (*model.ProjectMember, error) {
	if err := s.access.Require(ctx, projectID, actorID, rbac.PermissionMemberManage); err != nil {
		return nil, err
	}

	if input.Role == rbac.RoleOwner || !rbac.IsValidRole(input.Role) {
		return nil, ErrInvalidRole
	}

	u, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.members.GetRole(ctx, projectID, u.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	m := &model.ProjectMember{
		ProjectID:   projectID,
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		Role:        input.Role,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.members.Insert(ctx, tx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id

	if err := s.insertMemberEvent(ctx, tx, m, actorID, "added", mqcontracts.RoutingMemberAdded); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("Member added",
		zap.Int("project_id", projectID),
		zap.Int("user_id", u.ID),
		zap.String("role", input.Role),
	)

	return m, nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, projectID, memberID int) error {
	if err := s.access.Require(ctx, projectID, actorID, rbac.PermissionMemberManage); err != nil {
		return err
	}

	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if m.ProjectID != projectID {
		return pgx.ErrNoRows
	}
	if m.Role == rbac.RoleOwner {
		return ErrCannotRemove
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.members.Delete(ctx, tx, memberID); err != nil {
		return err
	}

	if err := s.insertMemberEvent(ctx, tx, m, actorID, "removed", mqcontracts.RoutingMemberRemoved); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Service) insertMemberEvent(ctx context.Context, tx pgx.Tx, m *model.ProjectMember, actorID int, action, routingKey string) error {
	payload := mqcontracts.MemberChangedPayload{
		ProjectID:   m.ProjectID,
		ActorID:     actorID,
		UserID:      m.UserID,
		MemberID:    m.ID,
		Action:      action,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		ChangedAt:   time.Now(),
	}
	return outbox.InsertEventInTx(ctx, tx, s.outbox, "member", outbox.AggregateID(m.ProjectID),
		routingKey, payload)
}
