package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"studioboard/internal/service/access"
	"studioboard/internal/service/board"
	"studioboard/internal/service/budget"
	"studioboard/internal/service/pitch"
	"studioboard/internal/service/project"
	"studioboard/internal/service/team"
	"studioboard/pkg/circuitbreaker"
)

// abortWithError maps domain errors onto HTTP statuses. Anything unmapped is
// a 500 with a generic message so internals never leak to clients.
func abortWithError(c *gin.Context, err error) {
	var agentErr *pitch.AgentError
	switch {
	case access.IsDenied(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, board.ErrInvalidStatus),
		errors.Is(err, board.ErrInvalidPriority),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, budget.ErrInvalidTxType),
		errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, team.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, team.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, team.ErrAlreadyMember), errors.Is(err, team.ErrCannotRemove):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
	case errors.As(err, &agentErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "agent service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func currentUserID(c *gin.Context) int {
	return c.GetInt("user_id")
}
