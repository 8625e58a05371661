package repo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"worklog-backend/config"
)

// SyncService periodically flushes the pending queue so operations
// recorded while the backend was unreachable are eventually delivered
// without waiting for an explicit sync request.
type SyncService struct {
	cfg    *config.SyncConfig
	repo   *Repo
	logger *logrus.Logger
}

// NewSyncService creates the background flusher.
func NewSyncService(cfg *config.SyncConfig, repo *Repo, logger *logrus.Logger) *SyncService {
	return &SyncService{cfg: cfg, repo: repo, logger: logger}
}

// Run flushes once at startup and then on every interval tick until
// the context is cancelled.
func (s *SyncService) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("Background sync is disabled. Not starting.")
		return
	}
	s.logger.Info("Starting background sync service...")

	s.flushOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Background sync service shutting down.")
			return
		case <-timer.C:
			s.flushOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *SyncService) flushOnce(ctx context.Context) {
	result, err := s.repo.FlushPending(ctx)
	if err != nil {
		s.logger.Errorf("background flush failed: %v", err)
		return
	}
	if result.OK > 0 || result.Failed > 0 || result.Dead > 0 {
		s.logger.Infof("background flush: %d delivered, %d still pending, %d dead", result.OK, result.Failed, result.Dead)
	}
}
