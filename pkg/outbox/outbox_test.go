package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 5*time.Second, RetryDelay(1))
	assert.Equal(t, 10*time.Second, RetryDelay(2))
	assert.Equal(t, 25*time.Second, RetryDelay(5))
}

func TestAggregateID(t *testing.T) {
	id := AggregateID(7)
	if assert.NotNil(t, id) {
		assert.Equal(t, int64(7), *id)
	}
}
