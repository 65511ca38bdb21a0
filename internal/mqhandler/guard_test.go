package mqhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studioboard/pkg/util"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	deduper := util.NewDeduper(rdb, time.Hour)
	retries := util.NewRetryCounter(rdb, time.Hour)
	return NewGuard(deduper, retries, nil, 5, zap.NewNop())
}

func TestGuardReprocessesAfterRetryableFailure(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	}

	// 第一次投递：可重试错误返回给 consumer（nack + 重新入队）
	err := g.Run(ctx, "board_progress", "1:created:42", "task.created", nil, fn)
	require.Error(t, err)
	require.Equal(t, 1, calls)

	// 重投递必须重新执行 handler，而不是当成重复消息 ack 掉
	err = g.Run(ctx, "board_progress", "1:created:42", "task.created", nil, fn)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestGuardSkipsDuplicateAfterSuccess(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return nil
	}

	require.NoError(t, g.Run(ctx, "board_progress", "7:created:99", "task.created", nil, fn))
	require.Equal(t, 1, calls)

	// 成功之后同一事件的重投递才是真正的重复
	require.NoError(t, g.Run(ctx, "board_progress", "7:created:99", "task.created", nil, fn))
	assert.Equal(t, 1, calls)
}

func TestGuardRecoversAfterTransientFailures(t *testing.T) {
	g := newTestGuard(t)
	ctx := context.Background()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	require.Error(t, g.Run(ctx, "budget_rollup", "5:recorded:1", "transaction.recorded", nil, fn))
	require.Error(t, g.Run(ctx, "budget_rollup", "5:recorded:1", "transaction.recorded", nil, fn))
	require.NoError(t, g.Run(ctx, "budget_rollup", "5:recorded:1", "transaction.recorded", nil, fn))
	assert.Equal(t, 3, calls)
}
