package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studioboard/internal/service/pitch"
)

type PitchHandler struct {
	client *pitch.Client
	logger *zap.Logger
}

func NewPitchHandler(client *pitch.Client, logger *zap.Logger) *PitchHandler {
	return &PitchHandler{client: client, logger: logger}
}

// Generate asks the agent service for a pitch blurb.
func (h *PitchHandler) Generate(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	text, err := h.client.Generate(c.Request.Context(), currentUserID(c), projectID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
