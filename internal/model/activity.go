package model

import "time"

type ActivityEntry struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	UserID    int       `json:"user_id"`
	Kind      string    `json:"kind"` // task.created, transaction.recorded, member.added, ...
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
