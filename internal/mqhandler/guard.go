package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"studioboard/pkg/metrics"
	"studioboard/pkg/mq"
	"studioboard/pkg/util"
)

// Guard wraps every worker handler with the shared consumption policy:
// redis dedup, retry counting with classification, and dead-lettering of
// poison messages. Returning nil to the consumer acks the message; returning
// an error nacks and requeues it.
type Guard struct {
	deduper    *util.Deduper
	retries    *util.RetryCounter
	publisher  *mq.Publisher
	maxRetries int64
	logger     *zap.Logger
}

func NewGuard(
	deduper *util.Deduper,
	retries *util.RetryCounter,
	publisher *mq.Publisher,
	maxRetries int64,
	logger *zap.Logger,
) *Guard {
	return &Guard{
		deduper:    deduper,
		retries:    retries,
		publisher:  publisher,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Run executes fn under the consumption policy. handlerName and eventKey
// together identify the unit of work for dedup and retry counting.
func (g *Guard) Run(ctx context.Context, handlerName, eventKey, routingKey string, data json.RawMessage, fn func(context.Context) error) error {
	if !g.deduper.AcquireOnce(ctx, handlerName, eventKey) {
		g.logger.Info("Duplicate event skipped",
			zap.String("handler", handlerName),
			zap.String("event_key", eventKey),
		)
		metrics.IncrementEventConsumed(routingKey, "duplicate")
		return nil
	}

	err := fn(ctx)
	if err == nil {
		_ = g.retries.Reset(ctx, util.FormatRetryKey(handlerName, eventKey))
		return nil
	}

	retryable, errType := util.IsRetryableError(err)
	if retryable {
		retryKey := util.FormatRetryKey(handlerName, eventKey)
		count, cErr := g.retries.IncrementAndGet(ctx, retryKey)
		if cErr != nil {
			g.logger.Warn("Retry counter unavailable", zap.Error(cErr))
			return g.requeue(ctx, handlerName, eventKey, err)
		}
		if util.ShouldRetry(count, g.maxRetries, retryable) {
			g.logger.Warn("Retryable handler error, requeueing",
				zap.String("handler", handlerName),
				zap.String("event_key", eventKey),
				zap.String("error_type", errType),
				zap.Int64("retry_count", count),
				zap.Error(err),
			)
			return g.requeue(ctx, handlerName, eventKey, err)
		}
	}

	// 不可重试或超过重试上限 → 进入死信队列并 ack
	g.logger.Error("Dead-lettering event",
		zap.String("handler", handlerName),
		zap.String("event_key", eventKey),
		zap.String("routing_key", routingKey),
		zap.String("error_type", errType),
		zap.Error(err),
	)
	if dlqErr := g.publisher.PublishToDLQ(routingKey, data, err.Error()); dlqErr != nil {
		g.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
		return g.requeue(ctx, handlerName, eventKey, err)
	}
	return nil
}

// requeue releases the dedup key before the error bubbles up to the consumer,
// so the redelivered message is actually reprocessed instead of being acked
// as a duplicate.
func (g *Guard) requeue(ctx context.Context, handlerName, eventKey string, err error) error {
	g.deduper.Release(ctx, handlerName, eventKey)
	return err
}
