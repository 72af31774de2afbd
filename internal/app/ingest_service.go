package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/student"
	idb "github.com/NVB20/whatsapp-automation-mk-II/internal/infra/database"
)

// BatchStats aggregates the outcome of one ingest batch. Accepted counts
// reflect what each student's merge actually incorporated, not the raw
// input size.
type BatchStats struct {
	StudentsProcessed int
	NewStudents       int
	UpdatedStudents   int
	MessagesAccepted  int
	PracticesAccepted int
	Errors            int
}

// IngestService folds a batch of classified events into the per-student
// progress records.
type IngestService interface {
	Ingest(ctx context.Context, events []activity.Event) (*BatchStats, error)
}

// IngestServiceImpl implements IngestService on top of the student
// repository. A failure while merging or persisting one student is
// recorded and does not stop the remaining students.
type IngestServiceImpl struct {
	studentRepo student.Repository
	logger      *logrus.Logger
	now         func() time.Time
}

func NewIngestService(repo student.Repository, logger *logrus.Logger) *IngestServiceImpl {
	return &IngestServiceImpl{
		studentRepo: repo,
		logger:      logger,
		now:         time.Now,
	}
}

// Ingest groups events by (phone number, name), merges each group into the
// student's existing record and upserts the result.
func (s *IngestServiceImpl) Ingest(ctx context.Context, events []activity.Event) (*BatchStats, error) {
	stats := &BatchStats{}
	if len(events) == 0 {
		s.logger.Info("Ingest: no events in batch, nothing to do.")
		return stats, nil
	}

	groups, order := groupByStudent(events)
	s.logger.Infof("Ingest: processing %d events for %d students.", len(events), len(order))

	for _, key := range order {
		group := groups[key]
		if err := s.processStudent(ctx, group, stats); err != nil {
			stats.Errors++
			s.logger.Errorf("Ingest: failed to process student %s (%s): %v", group[0].Name, group[0].PhoneNumber, err)
		}
	}

	s.logger.Infof("Ingest complete: %d students (%d new, %d updated), %d messages, %d practices, %d errors.",
		stats.StudentsProcessed, stats.NewStudents, stats.UpdatedStudents,
		stats.MessagesAccepted, stats.PracticesAccepted, stats.Errors)
	return stats, nil
}

func (s *IngestServiceImpl) processStudent(ctx context.Context, group []activity.Event, stats *BatchStats) error {
	uniqueID := student.ComputeUniqueID(group[0].PhoneNumber, group[0].Name)

	existing, err := s.studentRepo.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		if err != idb.ErrStudentNotFound {
			return fmt.Errorf("lookup failed: %w", err)
		}
		existing = nil
	}

	rec, isNew, res := student.Merge(existing, group, s.now())
	if res.MalformedEvents > 0 {
		stats.Errors += res.MalformedEvents
		s.logger.Warnf("Ingest: skipped %d events with unreadable timestamps for %s.", res.MalformedEvents, rec.Name)
	}

	if err := s.studentRepo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}

	stats.StudentsProcessed++
	if isNew {
		stats.NewStudents++
	} else {
		stats.UpdatedStudents++
	}
	stats.MessagesAccepted += res.MessagesAccepted
	stats.PracticesAccepted += res.PracticesAccepted

	s.logger.Debugf("Ingest: %s (%s) - %d messages, %d practices accepted.",
		rec.Name, rec.PhoneNumber, res.MessagesAccepted, res.PracticesAccepted)
	return nil
}

// groupByStudent buckets events by (phone number, name), preserving both
// the first-seen order of students and the relative order of each
// student's events.
func groupByStudent(events []activity.Event) (map[string][]activity.Event, []string) {
	groups := make(map[string][]activity.Event)
	var order []string
	for _, ev := range events {
		key := ev.PhoneNumber + "|" + ev.Name
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ev)
	}
	return groups, order
}
