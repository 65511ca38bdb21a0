package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"todo", StatusTodo, true},
		{"to do", StatusTodo, true},
		{"TODO", StatusTodo, true},
		{"in_progress", StatusInProgress, true},
		{"In Progress", StatusInProgress, true},
		{"reviewing", StatusReviewing, true},
		{"review", StatusReviewing, true},
		{"completed", StatusCompleted, true},
		{"done", StatusCompleted, true},
		{"blocked", StatusInProgress, true},
		{"  completed  ", StatusCompleted, true},
		{"shipped", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidPriority(t *testing.T) {
	assert.True(t, IsValidPriority(PriorityLow))
	assert.True(t, IsValidPriority(PriorityMedium))
	assert.True(t, IsValidPriority(PriorityHigh))
	assert.False(t, IsValidPriority("urgent"))
}

func TestIsValidTxType(t *testing.T) {
	assert.True(t, IsValidTxType(TxTypeExpense))
	assert.True(t, IsValidTxType(TxTypeIncome))
	assert.False(t, IsValidTxType("transfer"))
}
