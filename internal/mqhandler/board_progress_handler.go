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

// BoardProgressHandler reacts to task.* events: it recounts the project's
// tasks, writes the cached progress column back, records the activity entry
// and notifies the assignee of new tasks.
type BoardProgressHandler struct {
	guard         *Guard
	projects      *repository.ProjectRepository
	tasks         *repository.TaskRepository
	checklist     *repository.ChecklistRepository
	activities    *repository.ActivityRepository
	notifications *repository.NotificationRepository
	hub           *realtime.Hub
	logger        *zap.Logger
}

func NewBoardProgressHandler(
	guard *Guard,
	projects *repository.ProjectRepository,
	tasks *repository.TaskRepository,
	checklist *repository.ChecklistRepository,
	activities *repository.ActivityRepository,
	notifications *repository.NotificationRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *BoardProgressHandler {
	return &BoardProgressHandler{
		guard:         guard,
		projects:      projects,
		tasks:         tasks,
		checklist:     checklist,
		activities:    activities,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
	}
}

func (h *BoardProgressHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.TaskChangedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("json: failed to decode task event: %w", err)
	}

	eventKey := fmt.Sprintf("%d:%s:%d", payload.TaskID, payload.Action, payload.ChangedAt.UnixNano())
	routingKey := "task." + payload.Action
	if payload.Action == "moved" {
		routingKey = mqcontracts.RoutingTaskUpdated
	}

	return h.guard.Run(ctx, "board_progress", eventKey, routingKey, data, func(ctx context.Context) error {
		return h.recompute(ctx, payload)
	})
}

func (h *BoardProgressHandler) recompute(ctx context.Context, payload mqcontracts.TaskChangedPayload) error {
	start := time.Now()

	if _, err := h.projects.GetByID(ctx, payload.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// 项目已删除，事件作废
			h.logger.Info("Project gone, skipping recompute",
				zap.Int("project_id", payload.ProjectID),
			)
			return nil
		}
		return err
	}

	counts, err := h.tasks.Counts(ctx, payload.ProjectID)
	if err != nil {
		return err
	}

	progress := derived.ProjectProgress(counts)
	if err := h.projects.UpdateProgress(ctx, payload.ProjectID, progress); err != nil {
		return err
	}

	// 每次任务事件都按当前状态重算自身进度：完成态封顶 100%，
	// 其余状态回到清单派生，这样重开的任务不会卡在旧的 100%
	if payload.Action != "deleted" {
		itemCounts, cErr := h.checklist.Counts(ctx, payload.TaskID)
		if cErr != nil {
			return cErr
		}
		taskProgress := derived.TaskProgressWithStatus(payload.Status, itemCounts)
		if err := h.tasks.UpdateProgress(ctx, payload.TaskID, taskProgress); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Warn("Failed to update task progress", zap.Int("task_id", payload.TaskID), zap.Error(err))
		}
	}

	metrics.RecordRecomputeLatency("project_progress", time.Since(start))

	if err := h.activities.Insert(ctx, &model.ActivityEntry{
		ProjectID: payload.ProjectID,
		UserID:    payload.ActorID,
		Kind:      "task." + payload.Action,
		Detail:    fmt.Sprintf("task %q %s", payload.Name, payload.Action),
	}); err != nil {
		h.logger.Warn("Failed to record activity", zap.Error(err))
	}

	if payload.Action == "created" && payload.AssigneeID > 0 && payload.AssigneeID != payload.ActorID {
		if err := h.notifications.Insert(ctx, &model.Notification{
			UserID:  payload.AssigneeID,
			Kind:    "task.assigned",
			Content: fmt.Sprintf("You were assigned %q", payload.Name),
		}); err != nil {
			h.logger.Warn("Failed to notify assignee", zap.Error(err))
		}
	}

	h.hub.Publish(ctx, payload.ProjectID, realtime.Event{
		Kind:    "project.progress",
		Payload: mustJSON(map[string]interface{}{"progress": progress}),
	})

	h.logger.Info("Project progress recomputed",
		zap.Int("project_id", payload.ProjectID),
		zap.String("progress", progress),
		zap.Int("total", counts.Total),
		zap.Int("completed", counts.Completed),
	)
	return nil
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
