package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	var jsonErr error = &json.SyntaxError{}

	tests := []struct {
		name      string
		err       error
		retryable bool
		errType   string
	}{
		{"nil error", nil, false, ""},
		{"json syntax error", jsonErr, false, "json_decode_error"},
		{"row not found", pgx.ErrNoRows, false, "row_not_found"},
		{"wrapped row not found", fmt.Errorf("load: %w", pgx.ErrNoRows), false, "row_not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint`), false, "duplicate_key"},
		{"db connection", errors.New("connection refused"), true, "db_connection_error"},
		{"deadline exceeded", context.DeadlineExceeded, true, "timeout"},
		{"canceled", context.Canceled, false, "context_canceled"},
		{"agent 5xx", errors.New("agent service 5xx: 502"), true, "agent_service_error"},
		{"agent 4xx", errors.New("agent service error: 400"), false, "agent_service_rejected"},
		{"unknown", errors.New("something odd"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retryable, errType := IsRetryableError(tt.err)
			assert.Equal(t, tt.retryable, retryable)
			assert.Equal(t, tt.errType, errType)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(1, 5, false))
	assert.True(t, ShouldRetry(1, 5, true))
	assert.True(t, ShouldRetry(5, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
}
