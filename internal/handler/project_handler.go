package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studioboard/internal/service/project"
)

type ProjectHandler struct {
	service *project.Service
	logger  *zap.Logger
}

func NewProjectHandler(service *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var input project.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		h.logger.Error("Failed to create project", zap.Error(err))
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	detail, err := h.service.Get(c.Request.Context(), currentUserID(c), projectID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var input project.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Update(c.Request.Context(), currentUserID(c), projectID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentUserID(c), projectID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
