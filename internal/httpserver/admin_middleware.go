package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"studioboard/internal/model"
)

// AdminMiddleware 在 AuthMiddleware 之后使用，只放行 admin 账号。
// findUser 由调用方注入，便于测试。
func AdminMiddleware(findUser func(ctx context.Context, id int) (*model.User, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("user_id")

		u, err := findUser(c.Request.Context(), userID)
		if err != nil || u.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Next()
	}
}
