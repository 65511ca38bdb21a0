package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"studioboard/internal/service/board"
	"studioboard/internal/service/budget"
	"studioboard/internal/service/pitch"
	"studioboard/internal/service/project"
	"studioboard/internal/service/team"
	"studioboard/pkg/circuitbreaker"
	"studioboard/pkg/rbac"
)

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"permission denied", &rbac.PermissionDeniedError{Role: "member", Permission: "project:delete"}, http.StatusForbidden},
		{"row not found", pgx.ErrNoRows, http.StatusNotFound},
		{"invalid task status", board.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid task priority", board.ErrInvalidPriority, http.StatusBadRequest},
		{"invalid project status", project.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid transaction type", budget.ErrInvalidTxType, http.StatusBadRequest},
		{"invalid amount", budget.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid role", team.ErrInvalidRole, http.StatusBadRequest},
		{"user not found", team.ErrUserNotFound, http.StatusNotFound},
		{"already a member", team.ErrAlreadyMember, http.StatusConflict},
		{"breaker open", circuitbreaker.ErrCircuitBreakerOpen, http.StatusServiceUnavailable},
		{"agent rejected", &pitch.AgentError{StatusCode: 503}, http.StatusBadGateway},
		{"agent 4xx still bad gateway", &pitch.AgentError{StatusCode: 422}, http.StatusBadGateway},
		{"wrapped agent error", errors.Join(errors.New("generate"), &pitch.AgentError{StatusCode: 500}), http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			abortWithError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
