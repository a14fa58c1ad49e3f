package service

import (
	"context"
	"waseet-api/internal/entity"
	"waseet-api/internal/outbox"
	"waseet-api/internal/repo"

	"github.com/sirupsen/logrus"
)

type DiagnosticsService struct {
	diagnosticsRepo repo.Diagnostics
	outboxRepo      outbox.Store
	log             *logrus.Entry
}

func NewDiagnosticsService(deps Dependencies) *DiagnosticsService {
	deps.setDefaults()

	return &DiagnosticsService{
		diagnosticsRepo: deps.Repos.Diagnostics,
		outboxRepo:      deps.Repos.Outbox,
		log:             deps.Logger.WithField("component", "diagnostics"),
	}
}

func (s *DiagnosticsService) Ping(ctx context.Context) error {
	if err := s.diagnosticsRepo.Ping(ctx); err != nil {
		return err
	}

	return nil
}

// Stats reports pool usage and the outbox backlog. A failing backlog count
// is logged and reported as zero.
func (s *DiagnosticsService) Stats(ctx context.Context) entity.DiagnosticsOutputModel {
	stats := s.diagnosticsRepo.Stats()
	out := entity.DiagnosticsOutputModel{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
	}

	if s.outboxRepo != nil {
		pending, err := s.outboxRepo.Pending(ctx)
		if err != nil {
			s.log.WithError(err).Warn("count pending notifications")
		}
		out.PendingNotifications = pending
	}

	return out
}
