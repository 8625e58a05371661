package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"worklog-backend/internal/accounts"
	"worklog-backend/internal/model"
)

type registerEmployerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterEmployer handles POST /api/auth/employer/register.
func (h *Handler) RegisterEmployer(c *gin.Context) {
	var req registerEmployerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.accounts.RegisterEmployer(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	row.PasswordHash = ""
	c.JSON(http.StatusCreated, row)
}

type loginRequest struct {
	AccountNo int64  `json:"account_no" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginEmployer handles POST /api/auth/employer/login.
func (h *Handler) LoginEmployer(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.accounts.LoginEmployer(c.Request.Context(), req.AccountNo, req.Password)
	if err != nil {
		writeAccountError(c, err)
		return
	}
	row.PasswordHash = ""
	c.JSON(http.StatusOK, row)
}

type registerWorkerRequest struct {
	EmployerNo int64  `json:"employer_no" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Tz         string `json:"tz" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RegisterWorker handles POST /api/auth/worker/register.
func (h *Handler) RegisterWorker(c *gin.Context) {
	var req registerWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.accounts.RegisterWorker(c.Request.Context(), req.EmployerNo, req.FullName, req.Tz, req.Password)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	row.PasswordHash = ""
	c.JSON(http.StatusCreated, row)
}

// LoginWorker handles POST /api/auth/worker/login.
func (h *Handler) LoginWorker(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.accounts.LoginWorker(c.Request.Context(), req.AccountNo, req.Password)
	if err != nil {
		writeAccountError(c, err)
		return
	}
	row.PasswordHash = ""
	c.JSON(http.StatusOK, row)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeEmployerPassword handles PUT /api/employers/:employer_no/password.
func (h *Handler) ChangeEmployerPassword(c *gin.Context) {
	employerNo, ok := pathID(c, "employer_no")
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.ChangeEmployerPassword(c.Request.Context(), employerNo, req.OldPassword, req.NewPassword); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type punchModeRequest struct {
	PunchMode model.PunchMode `json:"punch_mode" binding:"required"`
}

// UpdateEmployerPunchMode handles PUT /api/employers/:employer_no/punch_mode.
func (h *Handler) UpdateEmployerPunchMode(c *gin.Context) {
	employerNo, ok := pathID(c, "employer_no")
	if !ok {
		return
	}
	req, ok := bindPunchMode(c)
	if !ok {
		return
	}

	if err := h.accounts.UpdateEmployerPunchMode(c.Request.Context(), employerNo, req.PunchMode); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateWorkerPunchMode handles PUT /api/workers/:emp_no/punch_mode.
func (h *Handler) UpdateWorkerPunchMode(c *gin.Context) {
	empNo, ok := pathID(c, "emp_no")
	if !ok {
		return
	}
	req, ok := bindPunchMode(c)
	if !ok {
		return
	}

	if err := h.accounts.UpdateWorkerPunchMode(c.Request.Context(), empNo, req.PunchMode); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetWorkerPassword handles POST /api/workers/:emp_no/reset_password.
func (h *Handler) ResetWorkerPassword(c *gin.Context) {
	empNo, ok := pathID(c, "emp_no")
	if !ok {
		return
	}
	if err := h.accounts.ResetWorkerPassword(c.Request.Context(), empNo); err != nil {
		writeAccountError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWorkers handles GET /api/employers/:employer_no/workers.
func (h *Handler) ListWorkers(c *gin.Context) {
	employerNo, ok := pathID(c, "employer_no")
	if !ok {
		return
	}
	workers, err := h.accounts.ListWorkers(c.Request.Context(), employerNo)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	for i := range workers {
		workers[i].PasswordHash = ""
	}
	c.JSON(http.StatusOK, workers)
}

// WorkerTotals handles GET /api/employers/:employer_no/worker_totals.
func (h *Handler) WorkerTotals(c *gin.Context) {
	employerNo, ok := pathID(c, "employer_no")
	if !ok {
		return
	}
	totals, err := h.accounts.WorkerPunchTotals(c.Request.Context(), employerNo)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, totals)
}

func bindPunchMode(c *gin.Context) (punchModeRequest, bool) {
	var req punchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	if req.PunchMode != model.PunchModeSite && req.PunchMode != model.PunchModeAnywhere {
		c.JSON(http.StatusBadRequest, gin.H{"error": "punch_mode must be site or anywhere"})
		return req, false
	}
	return req, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func writeAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
