package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"worklog-backend/internal/model"
)

type createProjectRequest struct {
	EmployerNo int64  `json:"employer_no" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Location   string `json:"location"`
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, queued, err := h.repo.CreateProject(c.Request.Context(), req.EmployerNo, req.Name, req.Location)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": row, "queued": queued})
}

// ListProjects handles GET /api/projects?employer_no=.
func (h *Handler) ListProjects(c *gin.Context) {
	employerNo, err := strconv.ParseInt(c.Query("employer_no"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid employer_no"})
		return
	}

	rows, err := h.repo.ListProjects(c.Request.Context(), employerNo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []model.ProjectRow{}
	}
	c.JSON(http.StatusOK, rows)
}
