package board

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
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Service owns the kanban board: tasks and their checklists. Every mutation
// writes the row and its domain event in one transaction; progress caches are
// recomputed by the worker when the event lands.
type Service struct {
	db        *pgxpool.Pool
	tasks     *repository.TaskRepository
	checklist *repository.ChecklistRepository
	outbox    *outbox.Repository
	access    *access.Checker
	logger    *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	tasks *repository.TaskRepository,
	checklist *repository.ChecklistRepository,
	outboxRepo *outbox.Repository,
	checker *access.Checker,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:        db,
		tasks:     tasks,
		checklist: checklist,
		outbox:    outboxRepo,
		access:    checker,
		logger:    logger,
	}
}

type TaskInput struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  int       `json:"assignee_id"`
	RoleTag     string    `json:"role_tag"`
	DueDate     time.Time `json:"due_date"`
}

type ChecklistInput struct {
	Label    string `json:"label" binding:"required"`
	Done     bool   `json:"done"`
	Position int    `json:"position"`
}

func (s *Service) ListTasks(ctx context.Context, userID, projectID int) ([]model.Task, error) {
	if err := s.access.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *Service) CreateTask(ctx context.Context, userID, projectID int, input TaskInput) (*model.Task, error) {
	if err := s.access.Require(ctx, projectID, userID, rbac.PermissionTaskCreate); err != nil {
		return nil, err
	}

	status := model.StatusTodo
	if input.Status != "" {
		normalized, ok := model.NormalizeStatus(input.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = normalized
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.IsValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	t := &model.Task{
		ProjectID:   projectID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		RoleTag:     input.RoleTag,
		DueDate:     input.DueDate,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		id, err := s.tasks.Insert(ctx, tx, t)
		if err != nil {
			return err
		}
		t.ID = id

		return s.insertTaskEvent(ctx, tx, t, userID, "created", mqcontracts.RoutingTaskCreated)
	})
	if err != nil {
		return nil, err
	}

	return s.tasks.GetByID(ctx, t.ID)
}

func (s *Service) UpdateTask(ctx context.Context, userID, taskID int, input TaskInput) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskUpdate); err != nil {
		return nil, err
	}

	if input.Status != "" {
		normalized, ok := model.NormalizeStatus(input.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		t.Status = normalized
	}
	if input.Priority != "" {
		if !model.IsValidPriority(input.Priority) {
			return nil, ErrInvalidPriority
		}
		t.Priority = input.Priority
	}
	t.Name = input.Name
	t.Description = input.Description
	t.AssigneeID = input.AssigneeID
	t.RoleTag = input.RoleTag
	t.DueDate = input.DueDate

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.tasks.Update(ctx, tx, t); err != nil {
			return err
		}
		return s.insertTaskEvent(ctx, tx, t, userID, "updated", mqcontracts.RoutingTaskUpdated)
	})
	if err != nil {
		return nil, err
	}

	return s.tasks.GetByID(ctx, taskID)
}

// MoveTask changes the task's board column.
func (s *Service) MoveTask(ctx context.Context, userID, taskID int, status string) (*model.Task, error) {
	normalized, ok := model.NormalizeStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskUpdate); err != nil {
		return nil, err
	}

	t.Status = normalized

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.tasks.UpdateStatus(ctx, tx, taskID, normalized); err != nil {
			return err
		}
		return s.insertTaskEvent(ctx, tx, t, userID, "moved", mqcontracts.RoutingTaskUpdated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task moved",
		zap.Int("task_id", taskID),
		zap.String("status", normalized),
	)

	return s.tasks.GetByID(ctx, taskID)
}

func (s *Service) DeleteTask(ctx context.Context, userID, taskID int) error {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskDelete); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.tasks.Delete(ctx, tx, taskID); err != nil {
			return err
		}
		return s.insertTaskEvent(ctx, tx, t, userID, "deleted", mqcontracts.RoutingTaskDeleted)
	})
}

func (s *Service) ListChecklist(ctx context.Context, userID, taskID int) ([]model.ChecklistItem, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(ctx, t.ProjectID, userID); err != nil {
		return nil, err
	}
	return s.checklist.ListByTask(ctx, taskID)
}

func (s *Service) AddChecklistItem(ctx context.Context, userID, taskID int, input ChecklistInput) (*model.ChecklistItem, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskUpdate); err != nil {
		return nil, err
	}

	item := &model.ChecklistItem{
		TaskID:   taskID,
		Label:    input.Label,
		Done:     input.Done,
		Position: input.Position,
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		id, err := s.checklist.Insert(ctx, tx, item)
		if err != nil {
			return err
		}
		item.ID = id
		return s.insertChecklistEvent(ctx, tx, item, t.ProjectID, userID)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) UpdateChecklistItem(ctx context.Context, userID, itemID int, input ChecklistInput) (*model.ChecklistItem, error) {
	item, err := s.checklist.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.GetByID(ctx, item.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskUpdate); err != nil {
		return nil, err
	}

	item.Label = input.Label
	item.Done = input.Done
	item.Position = input.Position

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.checklist.Update(ctx, tx, item); err != nil {
			return err
		}
		return s.insertChecklistEvent(ctx, tx, item, t.ProjectID, userID)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) DeleteChecklistItem(ctx context.Context, userID, itemID int) error {
	item, err := s.checklist.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	t, err := s.tasks.GetByID(ctx, item.TaskID)
	if err != nil {
		return err
	}

	if err := s.access.Require(ctx, t.ProjectID, userID, rbac.PermissionTaskUpdate); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.checklist.Delete(ctx, tx, itemID); err != nil {
			return err
		}
		return s.insertChecklistEvent(ctx, tx, item, t.ProjectID, userID)
	})
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Service) insertTaskEvent(ctx context.Context, tx pgx.Tx, t *model.Task, actorID int, action, routingKey string) error {
	payload := mqcontracts.TaskChangedPayload{
		TaskID:     t.ID,
		ProjectID:  t.ProjectID,
		ActorID:    actorID,
		AssigneeID: t.AssigneeID,
		Action:     action,
		Status:     t.Status,
		Name:       t.Name,
		ChangedAt:  time.Now(),
	}
	return outbox.InsertEventInTx(ctx, tx, s.outbox, "task", outbox.AggregateID(t.ID), routingKey, payload)
}

func (s *Service) insertChecklistEvent(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem, projectID, actorID int) error {
	payload := mqcontracts.ChecklistChangedPayload{
		ItemID:    item.ID,
		TaskID:    item.TaskID,
		ProjectID: projectID,
		ActorID:   actorID,
		ChangedAt: time.Now(),
	}
	return outbox.InsertEventInTx(ctx, tx, s.outbox, "checklist", outbox.AggregateID(item.TaskID),
		mqcontracts.RoutingChecklistChanged, payload)
}
