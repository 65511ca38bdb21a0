package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestOpensAfterFailureThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errBoom }))

	// 未连续失败两次，仍是关闭状态
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 5,
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitBreakerOpen)

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.GetState())

	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             10 * time.Millisecond,
		HalfOpenMaxRequests: 5,
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitBreakerOpen)
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestReset(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig())
	for i := 0; i < 6; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(func() error { return nil }))
}
