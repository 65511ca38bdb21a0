package model

import (
	"strings"
	"time"
)

// 看板列（任务状态）
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReviewing  = "reviewing"
	StatusCompleted  = "completed"
)

// 任务优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	AssigneeID  int       `json:"assignee_id"`
	RoleTag     string    `json:"role_tag"` // art / code / design / audio / qa
	DueDate     time.Time `json:"due_date"`
	Progress    string    `json:"progress"` // 派生自清单项，worker 写回
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ChecklistItem struct {
	ID       int    `json:"id"`
	TaskID   int    `json:"task_id"`
	Label    string `json:"label"`
	Done     bool   `json:"done"`
	Position int    `json:"position"`
}

// NormalizeStatus maps a client-supplied status onto the canonical board
// columns. Legacy variants from older boards ("Done", "Blocked") are folded
// into the canonical set. Returns false for unknown statuses.
func NormalizeStatus(s string) (string, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	switch normalized {
	case StatusTodo, "to_do":
		return StatusTodo, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusReviewing, "review":
		return StatusReviewing, true
	case StatusCompleted:
		return StatusCompleted, true
	case "done": // legacy
		return StatusCompleted, true
	case "blocked": // legacy, treated as started-but-stuck
		return StatusInProgress, true
	default:
		return "", false
	}
}

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
