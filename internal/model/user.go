package model

import "time"

// 全局账号角色，区别于项目内角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // user / admin
	CreatedAt    time.Time `json:"created_at"`
}
