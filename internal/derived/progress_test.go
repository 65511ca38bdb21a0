package derived

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studioboard/internal/model"
)

func TestProjectProgress(t *testing.T) {
	tests := []struct {
		name   string
		counts TaskCounts
		want   string
	}{
		{"no tasks", TaskCounts{Total: 0, Completed: 0}, "0%"},
		{"none completed", TaskCounts{Total: 4, Completed: 0}, "0%"},
		{"half completed", TaskCounts{Total: 4, Completed: 2}, "50%"},
		{"rounds up", TaskCounts{Total: 3, Completed: 2}, "67%"},
		{"rounds down", TaskCounts{Total: 3, Completed: 1}, "33%"},
		{"all completed", TaskCounts{Total: 7, Completed: 7}, "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectProgress(tt.counts))
		})
	}
}

func TestTaskProgress(t *testing.T) {
	assert.Equal(t, "0%", TaskProgress(ChecklistCounts{}))
	assert.Equal(t, "25%", TaskProgress(ChecklistCounts{Total: 4, Done: 1}))
	assert.Equal(t, "100%", TaskProgress(ChecklistCounts{Total: 2, Done: 2}))
}

func TestTaskProgressWithStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		counts ChecklistCounts
		want   string
	}{
		{"completed caps regardless of checklist", model.StatusCompleted, ChecklistCounts{Total: 4, Done: 1}, "100%"},
		{"completed with empty checklist", model.StatusCompleted, ChecklistCounts{}, "100%"},
		{"in progress follows checklist", model.StatusInProgress, ChecklistCounts{Total: 4, Done: 1}, "25%"},
		{"reopened task drops the cap", model.StatusTodo, ChecklistCounts{Total: 4, Done: 1}, "25%"},
		{"reopened with no checklist resets", model.StatusTodo, ChecklistCounts{}, "0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskProgressWithStatus(tt.status, tt.counts))
		})
	}
}

func TestPercentClamps(t *testing.T) {
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 0, Percent(-1, 10))
	assert.Equal(t, 100, Percent(11, 10))
}
