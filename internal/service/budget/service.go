package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/derived"
	"studioboard/internal/model"
	"studioboard/internal/repository"
	"studioboard/internal/service/access"
	"studioboard/pkg/outbox"
	"studioboard/pkg/rbac"
)

var (
	ErrInvalidTxType = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Service manages budget categories and the transaction ledger. Category
// edits are plain writes; transactions additionally emit an outbox event so
// the worker refreshes the cached spent/remaining columns.
type Service struct {
	db           *pgxpool.Pool
	projects     *repository.ProjectRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
	outbox       *outbox.Repository
	access       *access.Checker
	logger       *zap.Logger
}

func NewService(
	db *pgxpool.Pool,
	projects *repository.ProjectRepository,
	categories *repository.CategoryRepository,
	transactions *repository.TransactionRepository,
	outboxRepo *outbox.Repository,
	checker *access.Checker,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		projects:     projects,
		categories:   categories,
		transactions: transactions,
		outbox:       outboxRepo,
		access:       checker,
		logger:       logger,
	}
}

type CategoryInput struct {
	Name       string  `json:"name" binding:"required"`
	Allocation float64 `json:"allocation"`
}

type TransactionInput struct {
	Description string    `json:"description" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	EntryDate   time.Time `json:"entry_date"`
}

func (s *Service) AddCategory(ctx context.Context, userID, projectID int, input CategoryInput) (*model.BudgetCategory, error) {
	if err := s.access.Require(ctx, projectID, userID, rbac.PermissionBudgetManage); err != nil {
		return nil, err
	}

	cat := &model.BudgetCategory{
		ProjectID:  projectID,
		Name:       input.Name,
		Allocation: input.Allocation,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.categories.Insert(ctx, tx, cat)
	if err != nil {
		return nil, err
	}
	cat.ID = id

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, userID, categoryID int, input CategoryInput) (*model.BudgetCategory, error) {
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, cat.ProjectID, userID, rbac.PermissionBudgetManage); err != nil {
		return nil, err
	}

	cat.Name = input.Name
	cat.Allocation = input.Allocation

	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID int) error {
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}

	if err := s.access.Require(ctx, cat.ProjectID, userID, rbac.PermissionBudgetManage); err != nil {
		return err
	}

	return s.categories.Delete(ctx, categoryID)
}

func (s *Service) ListTransactions(ctx context.Context, userID, projectID int) ([]model.Transaction, error) {
	if err := s.access.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.transactions.ListByProject(ctx, projectID)
}

func (s *Service) RecordTransaction(ctx context.Context, userID, projectID int, input TransactionInput) (*model.Transaction, error) {
	if err := s.access.Require(ctx, projectID, userID, rbac.PermissionTransactionRecord); err != nil {
		return nil, err
	}

	txType := input.Type
	if txType == "" {
		txType = model.TxTypeExpense
	}
	if !model.IsValidTxType(txType) {
		return nil, ErrInvalidTxType
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	txn := &model.Transaction{
		ProjectID:   projectID,
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Type:        txType,
		EntryDate:   entryDate,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.transactions.Insert(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	txn.ID = id

	if err := s.insertTransactionEvent(ctx, tx, txn, userID, "recorded"); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("Transaction recorded",
		zap.Int("transaction_id", txn.ID),
		zap.Int("project_id", projectID),
		zap.Float64("amount", txn.Amount),
		zap.String("type", txn.Type),
	)

	return txn, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID int) error {
	txn, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := s.access.Require(ctx, txn.ProjectID, userID, rbac.PermissionTransactionRecord); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.transactions.Delete(ctx, tx, transactionID); err != nil {
		return err
	}

	if err := s.insertTransactionEvent(ctx, tx, txn, userID, "deleted"); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Summary recomputes the full budget breakdown from the ledger. The cached
// project columns are written by the worker; this read path always reflects
// the current rows.
func (s *Service) Summary(ctx context.Context, userID, projectID int) (*derived.BudgetSummary, error) {
	if err := s.access.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	summary := derived.Budget(p.InitialBudget, categories, txs)
	return &summary, nil
}

func (s *Service) insertTransactionEvent(ctx context.Context, tx pgx.Tx, txn *model.Transaction, actorID int, action string) error {
	payload := mqcontracts.TransactionRecordedPayload{
		TransactionID: txn.ID,
		ProjectID:     txn.ProjectID,
		ActorID:       actorID,
		Action:        action,
		TxType:        txn.Type,
		Category:      txn.Category,
		Amount:        txn.Amount,
		RecordedAt:    time.Now(),
	}
	return outbox.InsertEventInTx(ctx, tx, s.outbox, "transaction", outbox.AggregateID(txn.ID),
		mqcontracts.RoutingTransactionRecorded, payload)
}
