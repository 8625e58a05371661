package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"worklog-backend/internal/model"
)

// UploadMedia handles POST /api/projects/:project_id/media. The file
// arrives as multipart form field "file".
func (h *Handler) UploadMedia(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	// Spool the upload to a temp path so the media store can copy it
	// into its sandbox.
	tmp := filepath.Join(os.TempDir(), "worklog-upload-"+uuid.NewString())
	if err := c.SaveUploadedFile(file, tmp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.Remove(tmp)

	record, err := h.media.Save(c.Request.Context(), projectID, tmp, file.Header.Get("Content-Type"), file.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListMedia handles GET /api/projects/:project_id/media.
func (h *Handler) ListMedia(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	records, err := h.media.List(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []model.ProjectMedia{}
	}
	c.JSON(http.StatusOK, records)
}

type deleteMediaRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// DeleteMedia handles DELETE /api/projects/:project_id/media and
// returns the records that remain.
func (h *Handler) DeleteMedia(c *gin.Context) {
	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}
	var req deleteMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	remaining, err := h.media.Delete(c.Request.Context(), projectID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if remaining == nil {
		remaining = []model.ProjectMedia{}
	}
	c.JSON(http.StatusOK, remaining)
}
