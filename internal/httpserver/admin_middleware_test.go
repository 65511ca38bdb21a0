package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"studioboard/internal/model"
)

func performAdminRequest(t *testing.T, findUser func(ctx context.Context, id int) (*model.User, error), userID int) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	r.Use(AdminMiddleware(findUser))
	r.POST("/admin/outbox/replay", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/outbox/replay", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestAdminMiddleware(t *testing.T) {
	users := map[int]*model.User{
		1: {ID: 1, Role: model.RoleAdmin},
		2: {ID: 2, Role: model.RoleUser},
	}
	findUser := func(ctx context.Context, id int) (*model.User, error) {
		u, ok := users[id]
		if !ok {
			return nil, pgx.ErrNoRows
		}
		return u, nil
	}

	tests := []struct {
		name   string
		userID int
		want   int
	}{
		{"admin passes", 1, http.StatusOK},
		{"regular user rejected", 2, http.StatusForbidden},
		{"unknown user rejected", 99, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performAdminRequest(t, findUser, tt.userID)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
