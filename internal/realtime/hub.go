package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event is what SSE subscribers receive when derived state changes.
type Event struct {
	Kind      string          `json:"kind"`
	ProjectID int             `json:"project_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// Hub fans project events out over redis pub/sub. The worker publishes after
// each recompute; API instances subscribe on behalf of SSE clients, so events
// reach clients no matter which instance they are connected to.
type Hub struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{rdb: rdb, logger: logger}
}

func channelFor(projectID int) string {
	return fmt.Sprintf("project:%d:events", projectID)
}

// Publish pushes an event onto the project's channel. Failures are logged and
// swallowed; realtime delivery is best-effort.
func (h *Hub) Publish(ctx context.Context, projectID int, event Event) {
	event.ProjectID = projectID
	if event.At.IsZero() {
		event.At = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal realtime event", zap.Error(err))
		return
	}

	if err := h.rdb.Publish(ctx, channelFor(projectID), data).Err(); err != nil {
		h.logger.Warn("Failed to publish realtime event",
			zap.Int("project_id", projectID),
			zap.String("kind", event.Kind),
			zap.Error(err),
		)
	}
}

// Subscribe returns a channel of raw event JSON for the project. The caller
// must invoke cancel when done; the channel is closed afterwards. Slow
// consumers lose messages rather than block the pump.
func (h *Hub) Subscribe(ctx context.Context, projectID int) (<-chan string, func()) {
	sub := h.rdb.Subscribe(ctx, channelFor(projectID))
	out := make(chan string, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			default:
				h.logger.Warn("Dropping realtime event for slow subscriber",
					zap.Int("project_id", projectID),
				)
			}
		}
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			h.logger.Warn("Failed to close subscription", zap.Error(err))
		}
	}
	return out, cancel
}
