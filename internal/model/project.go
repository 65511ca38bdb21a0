package model

import "time"

// 项目生命周期状态
const (
	ProjectStatusPlanning      = "planning"
	ProjectStatusInDevelopment = "in_development"
	ProjectStatusReleased      = "released"
	ProjectStatusCancelled     = "cancelled"
)

// IsValidProjectStatus reports whether s is a known lifecycle status.
func IsValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInDevelopment, ProjectStatusReleased, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID            int       `json:"id"`
	OwnerID       int       `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Platform      string    `json:"platform"` // pc / console / mobile / web
	Genre         string    `json:"genre"`
	Status        string    `json:"status"` // planning / in_development / released / cancelled
	StartDate     time.Time `json:"start_date"`
	TargetDate    time.Time `json:"target_date"`
	InitialBudget float64   `json:"initial_budget"`

	// 派生字段：由 worker 重算后写回，客户端提交的值会被忽略
	Progress  string  `json:"progress"` // "NN%"
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProjectMember struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	UserID      int       `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"` // owner / producer / member
	AddedAt     time.Time `json:"added_at"`
}

type BudgetCategory struct {
	ID         int     `json:"id"`
	ProjectID  int     `json:"project_id"`
	Name       string  `json:"name"`
	Allocation float64 `json:"allocation"`
}
