package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/roster"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/runlog"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/telegram"
)

// ETLService runs the full pipeline: fetch raw chat messages, enrich and
// classify them against the student directory, merge the resulting events
// into the progress records, sync the dashboard, and record the run.
type ETLService interface {
	Run(ctx context.Context) (*BatchStats, error)
}

type ETLServiceImpl struct {
	source         activity.Source
	rosterProvider roster.Provider
	classifier     *activity.Classifier
	ingest         IngestService
	report         ReportService // nil when no dashboard is configured
	runLogRepo     runlog.Repository
	notifier       telegram.Client // nil when no bot is configured
	adminChatID    int64
	logger         *logrus.Logger
}

func NewETLService(
	source activity.Source,
	rosterProvider roster.Provider,
	classifier *activity.Classifier,
	ingest IngestService,
	reportSvc ReportService,
	runLogRepo runlog.Repository,
	notifier telegram.Client,
	adminChatID int64,
	logger *logrus.Logger,
) *ETLServiceImpl {
	return &ETLServiceImpl{
		source:         source,
		rosterProvider: rosterProvider,
		classifier:     classifier,
		ingest:         ingest,
		report:         reportSvc,
		runLogRepo:     runLogRepo,
		notifier:       notifier,
		adminChatID:    adminChatID,
		logger:         logger,
	}
}

// Run executes one ETL batch. The run is always recorded in the run log,
// success or failure; run log and notification failures are logged but do
// not fail the run.
func (s *ETLServiceImpl) Run(ctx context.Context) (*BatchStats, error) {
	started := time.Now()

	stats, scanned, err := s.runPipeline(ctx)
	s.recordRun(ctx, started, scanned, stats, err)
	if err != nil {
		return nil, err
	}
	s.notifyAdmin(scanned, stats)
	return stats, nil
}

func (s *ETLServiceImpl) runPipeline(ctx context.Context) (*BatchStats, int, error) {
	messages, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read messages: %w", err)
	}
	s.logger.Infof("ETL: fetched %d raw messages.", len(messages))

	directory, err := s.rosterProvider.Load(ctx)
	if err != nil {
		return nil, len(messages), fmt.Errorf("failed to load student directory: %w", err)
	}
	s.logger.Infof("ETL: loaded %d students from the directory.", directory.Len())

	var events []activity.Event
	var practices, plain int
	for _, msg := range messages {
		ev, ok := s.classifier.Classify(msg, directory)
		if !ok {
			continue
		}
		if ev.Kind == activity.KindPractice {
			practices++
		} else {
			plain++
		}
		events = append(events, ev)
	}
	s.logger.Infof("ETL: classified %d practice and %d message events.", practices, plain)

	stats, err := s.ingest.Ingest(ctx, events)
	if err != nil {
		return nil, len(messages), fmt.Errorf("ingest failed: %w", err)
	}

	if s.report == nil {
		return stats, len(messages), nil
	}
	if stats.MessagesAccepted+stats.PracticesAccepted == 0 {
		s.logger.Info("ETL: no new events accepted - skipping dashboard sync.")
		return stats, len(messages), nil
	}
	if _, err := s.report.SyncDashboard(ctx); err != nil {
		// The records are already persisted; a dashboard failure only
		// costs freshness, so it is counted rather than fatal.
		stats.Errors++
		s.logger.Errorf("ETL: dashboard sync failed: %v", err)
	}
	return stats, len(messages), nil
}

func (s *ETLServiceImpl) recordRun(ctx context.Context, started time.Time, scanned int, stats *BatchStats, runErr error) {
	entry := &runlog.Entry{
		ID:              uuid.NewString(),
		Source:          "students_etl",
		LogLevel:        runlog.LevelInfo,
		Timestamp:       started,
		MessagesScanned: scanned,
		TotalRunTime:    time.Since(started).Seconds(),
		Success:         runErr == nil,
		Metadata: map[string]string{
			"process":  "student_activity_ingest",
			"run_date": started.Format("2006-01-02"),
			"run_time": started.Format("15:04:05"),
		},
	}
	if stats != nil {
		entry.StudentsProcessed = stats.StudentsProcessed
		entry.NewStudents = stats.NewStudents
		entry.UpdatedStudents = stats.UpdatedStudents
		entry.MessagesAccepted = stats.MessagesAccepted
		entry.PracticesAccepted = stats.PracticesAccepted
		entry.Errors = stats.Errors
	}
	if runErr != nil {
		entry.LogLevel = runlog.LevelError
		entry.ErrorMessage = runErr.Error()
	}

	if err := s.runLogRepo.Insert(ctx, entry); err != nil {
		s.logger.Warnf("ETL: could not record run log entry: %v", err)
	}
}

func (s *ETLServiceImpl) notifyAdmin(scanned int, stats *BatchStats) {
	if s.notifier == nil || s.adminChatID == 0 {
		return
	}
	text := fmt.Sprintf(
		"ETL run complete\n%d messages scanned\nStudents: %d (%d new, %d updated)\nAccepted: %d messages, %d practices\nErrors: %d",
		scanned, stats.StudentsProcessed, stats.NewStudents, stats.UpdatedStudents,
		stats.MessagesAccepted, stats.PracticesAccepted, stats.Errors)
	if err := s.notifier.SendMessage(s.adminChatID, text, nil); err != nil {
		s.logger.Warnf("ETL: could not send run summary to admin: %v", err)
	}
}
