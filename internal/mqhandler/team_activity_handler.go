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

// TeamActivityHandler records roster changes in the activity feed and tells
// users when they get added to a project.
type TeamActivityHandler struct {
	guard         *Guard
	projects      *repository.ProjectRepository
	activities    *repository.ActivityRepository
	notifications *repository.NotificationRepository
	hub           *realtime.Hub
	logger        *zap.Logger
}

func NewTeamActivityHandler(
	guard *Guard,
	projects *repository.ProjectRepository,
	activities *repository.ActivityRepository,
	notifications *repository.NotificationRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *TeamActivityHandler {
	return &TeamActivityHandler{
		guard:         guard,
		projects:      projects,
		activities:    activities,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
	}
}

func (h *TeamActivityHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mqcontracts.MemberChangedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("json: failed to decode member event: %w", err)
	}

	eventKey := fmt.Sprintf("%d:%d:%s:%d", payload.ProjectID, payload.UserID, payload.Action, payload.ChangedAt.UnixNano())
	routingKey := "member." + payload.Action

	return h.guard.Run(ctx, "team_roster", eventKey, routingKey, data, func(ctx context.Context) error {
		return h.process(ctx, payload)
	})
}

func (h *TeamActivityHandler) process(ctx context.Context, payload mqcontracts.MemberChangedPayload) error {
	if err := h.activities.Insert(ctx, &model.ActivityEntry{
		ProjectID: payload.ProjectID,
		UserID:    payload.ActorID,
		Kind:      "member." + payload.Action,
		Detail:    fmt.Sprintf("%s (%s) %s", payload.DisplayName, payload.Role, payload.Action),
	}); err != nil {
		return err
	}

	if payload.Action == "added" {
		p, err := h.projects.GetByID(ctx, payload.ProjectID)
		if err != nil {
			return err
		}
		if err := h.notifications.Insert(ctx, &model.Notification{
			UserID:  payload.UserID,
			Kind:    "member.added",
			Content: fmt.Sprintf("You joined %q as %s", p.Name, payload.Role),
		}); err != nil {
			h.logger.Warn("Failed to notify member", zap.Error(err))
		}
	}

	h.hub.Publish(ctx, payload.ProjectID, realtime.Event{
		Kind: "member." + payload.Action,
		Payload: mustJSON(map[string]interface{}{
			"user_id":      payload.UserID,
			"display_name": payload.DisplayName,
			"role":         payload.Role,
		}),
	})
	return nil
}
