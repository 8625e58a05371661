package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flush handles POST /api/sync/flush, attempting redelivery of every
// queued operation and reporting the outcome.
func (h *Handler) Flush(c *gin.Context) {
	result, err := h.repo.FlushPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncStatus handles GET /api/sync/status.
func (h *Handler) SyncStatus(c *gin.Context) {
	status, err := h.repo.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
