package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studioboard/internal/repository"
	"studioboard/internal/service/access"
)

type ActivityHandler struct {
	activities *repository.ActivityRepository
	access     *access.Checker
	logger     *zap.Logger
}

func NewActivityHandler(activities *repository.ActivityRepository, checker *access.Checker, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, access: checker, logger: logger}
}

// List returns the project's activity feed, newest first.
func (h *ActivityHandler) List(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.access.RequireMember(c.Request.Context(), projectID, currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.activities.ListByProject(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Int("project_id", projectID), zap.Error(err))
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
