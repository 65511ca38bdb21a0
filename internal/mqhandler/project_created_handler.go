package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/model"
	"studioboard/internal/realtime"
	"studioboard/internal/repository"
)

// ProjectCreatedHandler seeds the activity feed for new projects.
type ProjectCreatedHandler struct {
	guard      *Guard
	activities *repository.ActivityRepository
	hub        *realtime.Hub
	logger     *zap.Logger
}

func NewProjectCreatedHandler(
	guard *Guard,
	activities *repository.ActivityRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *ProjectCreatedHandler {
	return &ProjectCreatedHandler{
		guard:      guard,
		activities: activities,
		hub:        hub,
		logger:     logger,
	}
}

func (h *ProjectCreatedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.ProjectCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("json: failed to decode project event: %w", err)
	}

	eventKey := fmt.Sprintf("%d:%d", payload.ProjectID, payload.CreatedAt.UnixNano())

	return h.guard.Run(ctx, "project_lifecycle", eventKey, mqcontracts.RoutingProjectCreated, data, func(ctx context.Context) error {
		if err := h.activities.Insert(ctx, &model.ActivityEntry{
			ProjectID: payload.ProjectID,
			UserID:    payload.OwnerID,
			Kind:      "project.created",
			Detail:    fmt.Sprintf("project %q created", payload.Name),
		}); err != nil {
			return err
		}

		h.hub.Publish(ctx, payload.ProjectID, realtime.Event{
			Kind:    "project.created",
			Payload: mustJSON(map[string]interface{}{"name": payload.Name}),
		})
		return nil
	})
}
