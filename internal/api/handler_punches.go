package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"worklog-backend/internal/model"
	"worklog-backend/internal/payroll"
)

// punchResponse reports the recorded row and whether it still awaits
// delivery to the backend.
type punchResponse struct {
	Punch  model.PunchRow `json:"punch"`
	Queued bool           `json:"queued"`
}

// RecordWorkerPunch handles POST /api/punches/worker/:emp_no.
func (h *Handler) RecordWorkerPunch(c *gin.Context) {
	empNo, ok := pathID(c, "emp_no")
	if !ok {
		return
	}
	var in model.PunchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, queued, err := h.repo.RecordPunchWorker(c.Request.Context(), empNo, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, punchResponse{Punch: row, Queued: queued})
}

// RecordEmployerPunch handles POST /api/punches/employer/:employer_no.
func (h *Handler) RecordEmployerPunch(c *gin.Context) {
	employerNo, ok := pathID(c, "employer_no")
	if !ok {
		return
	}
	var in model.PunchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, queued, err := h.repo.RecordPunchEmployer(c.Request.Context(), employerNo, in)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, punchResponse{Punch: row, Queued: queued})
}

// ListPunches handles GET /api/punches/:subject_type/:subject_id,
// serving the locally mirrored history.
func (h *Handler) ListPunches(c *gin.Context) {
	subject, err := model.ParseSubjectType(c.Param("subject_type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subjectID, ok := pathID(c, "subject_id")
	if !ok {
		return
	}

	punches, err := h.repo.Punches(c.Request.Context(), subject, subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if punches == nil {
		punches = []model.PunchRow{}
	}
	c.JSON(http.StatusOK, punches)
}

// MonthTotal handles
// GET /api/punches/:subject_type/:subject_id/month_total?year=&month=.
// Month is 1 through 12. The total sums completed punches whose "out"
// timestamp falls inside the month, read from the local mirror.
func (h *Handler) MonthTotal(c *gin.Context) {
	subject, err := model.ParseSubjectType(c.Param("subject_type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subjectID, ok := pathID(c, "subject_id")
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
		return
	}

	punches, err := h.repo.Punches(c.Request.Context(), subject, subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totalMs := payroll.TotalForMonth(punches, year, month-1)
	c.JSON(http.StatusOK, gin.H{
		"total_ms":  totalMs,
		"formatted": payroll.FormatHm(totalMs),
	})
}
