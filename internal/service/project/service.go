package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/model"
	"studioboard/internal/repository"
	"studioboard/internal/service/access"
	"studioboard/pkg/outbox"
	"studioboard/pkg/rbac"
)

var ErrInvalidStatus = errors.New("invalid project status")

type Service struct {
	db         *pgxpool.Pool
	projects   *repository.ProjectRepository
	members    *repository.MemberRepository
	categories *repository.CategoryRepository
	users      *repository.UserRepository
	outbox     *outbox.Repository
	access     *access.Checker
	logger     *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	projects *repository.ProjectRepository,
	members *repository.MemberRepository,
	categories *repository.CategoryRepository,
	users *repository.UserRepository,
	outboxRepo *outbox.Repository,
	checker *access.Checker,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:         db,
		projects:   projects,
		members:    members,
		categories: categories,
		users:      users,
		outbox:     outboxRepo,
		access:     checker,
		logger:     logger,
	}
}

type CategoryInput struct {
	Name       string  `json:"name" binding:"required"`
	Allocation float64 `json:"allocation"`
}

type CreateInput struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Platform      string          `json:"platform"`
	Genre         string          `json:"genre"`
	StartDate     time.Time       `json:"start_date"`
	TargetDate    time.Time       `json:"target_date"`
	InitialBudget float64         `json:"initial_budget"`
	Categories    []CategoryInput `json:"categories"`
}

type UpdateInput struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	Platform      string    `json:"platform"`
	Genre         string    `json:"genre"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	TargetDate    time.Time `json:"target_date"`
	InitialBudget float64   `json:"initial_budget"`
}

// Detail is a project with its roster and budget categories attached.
type Detail struct {
	Project    model.Project          `json:"project"`
	Members    []model.ProjectMember  `json:"members"`
	Categories []model.BudgetCategory `json:"categories"`
}

// Create inserts the project, its owner roster entry and initial budget
// categories in one transaction, together with the project.created outbox
// event.
func (s *Service) Create(ctx context.Context, ownerID int, input CreateInput) (*model.Project, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	p := &model.Project{
		OwnerID:       ownerID,
		Name:          input.Name,
		Description:   input.Description,
		Platform:      input.Platform,
		Genre:         input.Genre,
		Status:        model.ProjectStatusPlanning,
		StartDate:     input.StartDate,
		TargetDate:    input.TargetDate,
		InitialBudget: input.InitialBudget,
	}

	projectID, err := s.projects.Insert(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	_, err = s.members.Insert(ctx, tx, &model.ProjectMember{
		ProjectID:   projectID,
		UserID:      ownerID,
		DisplayName: owner.DisplayName,
		Role:        rbac.RoleOwner,
	})
	if err != nil {
		return nil, err
	}

	for _, cat := range input.Categories {
		_, err := s.categories.Insert(ctx, tx, &model.BudgetCategory{
			ProjectID:  projectID,
			Name:       cat.Name,
			Allocation: cat.Allocation,
		})
		if err != nil {
			return nil, err
		}
	}

	payload := mqcontracts.ProjectCreatedPayload{
		ProjectID: projectID,
		OwnerID:   ownerID,
		Name:      input.Name,
		CreatedAt: time.Now(),
	}
	err = outbox.InsertEventInTx(ctx, tx, s.outbox, "project", outbox.AggregateID(projectID),
		mqcontracts.RoutingProjectCreated, payload)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("Project created",
		zap.Int("project_id", projectID),
		zap.Int("owner_id", ownerID),
	)

	return s.projects.GetByID(ctx, projectID)
}

// Get returns the project with roster and categories. Derived fields come
// straight from the cached columns.
func (s *Service) Get(ctx context.Context, userID, projectID int) (*Detail, error) {
	if err := s.access.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Project:    *p,
		Members:    members,
		Categories: categories,
	}, nil
}

func (s *Service) List(ctx context.Context, userID int) ([]model.Project, error) {
	return s.projects.ListForUser(ctx, userID)
}

// Update overwrites the authoritative project fields. Derived fields
// (progress, spent, remaining) are never taken from the input.
func (s *Service) Update(ctx context.Context, userID, projectID int, input UpdateInput) (*model.Project, error) {
	if err := s.access.Require(ctx, projectID, userID, rbac.PermissionProjectUpdate); err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	p.Name = input.Name
	p.Description = input.Description
	p.Platform = input.Platform
	p.Genre = input.Genre
	if input.Status != "" {
		if !model.IsValidProjectStatus(input.Status) {
			return nil, ErrInvalidStatus
		}
		p.Status = input.Status
	}
	p.StartDate = input.StartDate
	p.TargetDate = input.TargetDate
	p.InitialBudget = input.InitialBudget

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}

	return s.projects.GetByID(ctx, projectID)
}

func (s *Service) Delete(ctx context.Context, userID, projectID int) error {
	if err := s.access.Require(ctx, projectID, userID, rbac.PermissionProjectDelete); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}
