package api

import (
	"github.com/sirupsen/logrus"

	"worklog-backend/internal/accounts"
	"worklog-backend/internal/media"
	"worklog-backend/internal/repo"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	repo     *repo.Repo
	accounts *accounts.Service
	media    *media.Store
	logger   *logrus.Logger
}

// NewHandler creates a new API handler.
func NewHandler(r *repo.Repo, a *accounts.Service, m *media.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		repo:     r,
		accounts: a,
		media:    m,
		logger:   logger,
	}
}
