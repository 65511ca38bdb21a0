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
	"studioboard/internal/realtime"
	"studioboard/internal/repository"
	"studioboard/pkg/metrics"
)

// ChecklistHandler recomputes a task's progress from its checklist whenever
// an item changes.
type ChecklistHandler struct {
	guard     *Guard
	tasks     *repository.TaskRepository
	checklist *repository.ChecklistRepository
	hub       *realtime.Hub
	logger    *zap.Logger
}

func NewChecklistHandler(
	guard *Guard,
	tasks *repository.TaskRepository,
	checklist *repository.ChecklistRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *ChecklistHandler {
	return &ChecklistHandler{
		guard:     guard,
		tasks:     tasks,
		checklist: checklist,
		hub:       hub,
		logger:    logger,
	}
}

func (h *ChecklistHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ChecklistChangedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("json: failed to decode checklist event: %w", err)
	}

	eventKey := fmt.Sprintf("%d:%d:%d", payload.TaskID, payload.ItemID, payload.ChangedAt.UnixNano())

	return h.guard.Run(ctx, "task_checklist", eventKey, mqcontracts.RoutingChecklistChanged, data, func(ctx context.Context) error {
		return h.recompute(ctx, payload)
	})
}

func (h *ChecklistHandler) recompute(ctx context.Context, payload mqcontracts.ChecklistChangedPayload) error {
	start := time.Now()

	if _, err := h.tasks.GetByID(ctx, payload.TaskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.logger.Info("Task gone, skipping recompute", zap.Int("task_id", payload.TaskID))
			return nil
		}
		return err
	}

	counts, err := h.checklist.Counts(ctx, payload.TaskID)
	if err != nil {
		return err
	}

	progress := derived.TaskProgress(counts)
	if err := h.tasks.UpdateProgress(ctx, payload.TaskID, progress); err != nil {
		return err
	}

	metrics.RecordRecomputeLatency("task_progress", time.Since(start))

	h.hub.Publish(ctx, payload.ProjectID, realtime.Event{
		Kind: "task.progress",
		Payload: mustJSON(map[string]interface{}{
			"task_id":  payload.TaskID,
			"progress": progress,
		}),
	})

	h.logger.Info("Task progress recomputed",
		zap.Int("task_id", payload.TaskID),
		zap.String("progress", progress),
	)
	return nil
}
