package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"worklog-backend/config"
	"worklog-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Read caching only covers the listing endpoints; punch and sync
	// responses must always be fresh.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/employer/register", handler.RegisterEmployer)
			auth.POST("/employer/login", handler.LoginEmployer)
			auth.POST("/worker/register", handler.RegisterWorker)
			auth.POST("/worker/login", handler.LoginWorker)
		}

		api.PUT("/employers/:employer_no/password", handler.ChangeEmployerPassword)
		api.PUT("/employers/:employer_no/punch_mode", handler.UpdateEmployerPunchMode)
		api.GET("/employers/:employer_no/workers", handler.ListWorkers)
		api.GET("/employers/:employer_no/worker_totals", handler.WorkerTotals)
		api.PUT("/workers/:emp_no/punch_mode", handler.UpdateWorkerPunchMode)
		api.POST("/workers/:emp_no/reset_password", handler.ResetWorkerPassword)

		api.POST("/punches/worker/:emp_no", handler.RecordWorkerPunch)
		api.POST("/punches/employer/:employer_no", handler.RecordEmployerPunch)
		api.GET("/punches/:subject_type/:subject_id", handler.ListPunches)
		api.GET("/punches/:subject_type/:subject_id/month_total", handler.MonthTotal)

		api.POST("/projects", handler.CreateProject)
		api.GET("/projects", caching, handler.ListProjects)
		api.POST("/projects/:project_id/media", handler.UploadMedia)
		api.GET("/projects/:project_id/media", handler.ListMedia)
		api.DELETE("/projects/:project_id/media", handler.DeleteMedia)

		api.POST("/geo/check_site", handler.CheckSite)

		api.POST("/sync/flush", handler.Flush)
		api.GET("/sync/status", handler.SyncStatus)
	}

	return r
}
