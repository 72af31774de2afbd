package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/report"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/student"
)

// ReportService pushes the latest practice date per student to the
// reporting sink (the dashboard sheet). The stored records are the master
// data; the sink is always synced towards them.
type ReportService interface {
	SyncDashboard(ctx context.Context) (*report.Stats, error)
}

type ReportServiceImpl struct {
	studentRepo student.Repository
	sink        report.Sink
	logger      *logrus.Logger
}

func NewReportService(repo student.Repository, sink report.Sink, logger *logrus.Logger) *ReportServiceImpl {
	return &ReportServiceImpl{
		studentRepo: repo,
		sink:        sink,
		logger:      logger,
	}
}

func (s *ReportServiceImpl) SyncDashboard(ctx context.Context) (*report.Stats, error) {
	latest, err := s.studentRepo.LatestPracticeDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect latest practice dates: %w", err)
	}
	s.logger.Infof("Report: found latest practice dates for %d students.", len(latest))

	stats, err := s.sink.SyncPracticeDates(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("failed to sync practice dates: %w", err)
	}
	s.logger.Infof("Report: dashboard sync complete - %d updated, %d already in sync, %d not on dashboard.",
		stats.UpdatesNeeded, stats.NoChanges, stats.NotFound)
	return stats, nil
}
