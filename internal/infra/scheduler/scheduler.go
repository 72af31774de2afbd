package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/app"
)

type ETLScheduler struct {
	cronEngine *cron.Cron
	etlService app.ETLService
	logger     *logrus.Logger
	cronSpec   string
}

func NewETLScheduler(etlService app.ETLService, logger *logrus.Logger, cronSpec string) *ETLScheduler {
	return &ETLScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		etlService: etlService,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *ETLScheduler) Start() {
	s.logger.Info("Starting ETL scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for student activity ETL run.")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.etlService.Run(ctx); err != nil {
			s.logger.Errorf("Error during scheduled ETL run: %v", err)
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add ETL cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("ETL scheduler started with spec %q.", s.cronSpec)
}

func (s *ETLScheduler) Stop() {
	s.logger.Info("Stopping ETL scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("ETL scheduler gracefully stopped.")
}
