package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studioboard/internal/realtime"
	"studioboard/internal/service/access"
)

type StreamHandler struct {
	hub    *realtime.Hub
	access *access.Checker
	logger *zap.Logger
}

func NewStreamHandler(hub *realtime.Hub, checker *access.Checker, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, access: checker, logger: logger}
}

// Events streams derived-state change events for a project over SSE. The
// subscription lives for as long as the client keeps the connection open.
func (h *StreamHandler) Events(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.access.RequireMember(c.Request.Context(), projectID, currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	events, cancel := h.hub.Subscribe(c.Request.Context(), projectID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	// 心跳防止代理断开空闲连接
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
