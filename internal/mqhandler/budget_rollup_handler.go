package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/derived"
	"studioboard/internal/model"
	"studioboard/internal/realtime"
	"studioboard/internal/repository"
	"studioboard/pkg/metrics"
)

// BudgetRollupHandler refreshes the cached spent/remaining columns from the
// transaction ledger and warns the owner when the project goes over budget.
type BudgetRollupHandler struct {
	guard         *Guard
	projects      *repository.ProjectRepository
	categories    *repository.CategoryRepository
	transactions  *repository.TransactionRepository
	activities    *repository.ActivityRepository
	notifications *repository.NotificationRepository
	hub           *realtime.Hub
	logger        *zap.Logger
}

func NewBudgetRollupHandler(
	guard *Guard,
	projects *repository.ProjectRepository,
	categories *repository.CategoryRepository,
	transactions *repository.TransactionRepository,
	activities *repository.ActivityRepository,
	notifications *repository.NotificationRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *BudgetRollupHandler {
	return &BudgetRollupHandler{
		guard:         guard,
		projects:      projects,
		categories:    categories,
		transactions:  transactions,
		activities:    activities,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
	}
}

func (h *BudgetRollupHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.TransactionRecordedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("json: failed to decode transaction event: %w", err)
	}

	eventKey := fmt.Sprintf("%d:%s:%d", payload.TransactionID, payload.Action, payload.RecordedAt.UnixNano())

	return h.guard.Run(ctx, "budget_rollup", eventKey, mqcontracts.RoutingTransactionRecorded, data, func(ctx context.Context) error {
		return h.recompute(ctx, payload)
	})
}

func (h *BudgetRollupHandler) recompute(ctx context.Context, payload mqcontracts.TransactionRecordedPayload) error {
	start := time.Now()

	p, err := h.projects.GetByID(ctx, payload.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.logger.Info("Project gone, skipping rollup", zap.Int("project_id", payload.ProjectID))
			return nil
		}
		return err
	}

	categories, err := h.categories.ListByProject(ctx, payload.ProjectID)
	if err != nil {
		return err
	}

	txs, err := h.transactions.ListByProject(ctx, payload.ProjectID)
	if err != nil {
		return err
	}

	summary := derived.Budget(p.InitialBudget, categories, txs)
	if err := h.projects.UpdateBudgetRollup(ctx, payload.ProjectID, summary.Spent, summary.Remaining); err != nil {
		return err
	}

	metrics.RecordRecomputeLatency("budget_rollup", time.Since(start))

	if err := h.activities.Insert(ctx, &model.ActivityEntry{
		ProjectID: payload.ProjectID,
		UserID:    payload.ActorID,
		Kind:      "transaction." + payload.Action,
		Detail:    fmt.Sprintf("%s of %.2f in %q %s", payload.TxType, payload.Amount, payload.Category, payload.Action),
	}); err != nil {
		h.logger.Warn("Failed to record activity", zap.Error(err))
	}

	if summary.Remaining < 0 {
		if err := h.notifications.Insert(ctx, &model.Notification{
			UserID:  p.OwnerID,
			Kind:    "budget.exceeded",
			Content: fmt.Sprintf("Project %q is %.2f over budget", p.Name, -summary.Remaining),
		}); err != nil {
			h.logger.Warn("Failed to notify owner", zap.Error(err))
		}
	}

	h.hub.Publish(ctx, payload.ProjectID, realtime.Event{
		Kind: "budget.rollup",
		Payload: mustJSON(map[string]interface{}{
			"spent":     summary.Spent,
			"remaining": summary.Remaining,
		}),
	})

	h.logger.Info("Budget rollup recomputed",
		zap.Int("project_id", payload.ProjectID),
		zap.Float64("spent", summary.Spent),
		zap.Float64("remaining", summary.Remaining),
	)
	return nil
}
