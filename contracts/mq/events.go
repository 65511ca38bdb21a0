package mq

import "time"

// 事件 routing key 常量（topic exchange "events"）
const (
	RoutingProjectCreated      = "project.created"
	RoutingTaskCreated         = "task.created"
	RoutingTaskUpdated         = "task.updated"
	RoutingTaskDeleted         = "task.deleted"
	RoutingChecklistChanged    = "checklist.changed"
	RoutingTransactionRecorded = "transaction.recorded"
	RoutingMemberAdded         = "member.added"
	RoutingMemberRemoved       = "member.removed"
)

// 项目创建事件的 payload
type ProjectCreatedPayload struct {
	ProjectID int       `json:"project_id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// 任务变更事件的 payload（task.created / task.updated / task.deleted）
type TaskChangedPayload struct {
	TaskID     int       `json:"task_id"`
	ProjectID  int       `json:"project_id"`
	ActorID    int       `json:"actor_id"`
	AssigneeID int       `json:"assignee_id,omitempty"`
	Action     string    `json:"action"` // created / updated / moved / deleted
	Status     string    `json:"status"`
	Name       string    `json:"name"`
	ChangedAt  time.Time `json:"changed_at"`
}

// 任务清单变更事件的 payload
type ChecklistChangedPayload struct {
	ItemID    int       `json:"item_id"`
	TaskID    int       `json:"task_id"`
	ProjectID int       `json:"project_id"`
	ActorID   int       `json:"actor_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// 收支记录事件的 payload
type TransactionRecordedPayload struct {
	TransactionID int       `json:"transaction_id"`
	ProjectID     int       `json:"project_id"`
	ActorID       int       `json:"actor_id"`
	Action        string    `json:"action"` // recorded / deleted
	TxType        string    `json:"tx_type"`
	Category      string    `json:"category"`
	Amount        float64   `json:"amount"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// 团队成员变更事件的 payload
type MemberChangedPayload struct {
	ProjectID   int       `json:"project_id"`
	ActorID     int       `json:"actor_id"`
	UserID      int       `json:"user_id"`
	MemberID    int       `json:"member_id"`
	Action      string    `json:"action"` // added / removed
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	ChangedAt   time.Time `json:"changed_at"`
}
