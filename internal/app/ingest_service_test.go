package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/student"
	idb "github.com/NVB20/whatsapp-automation-mk-II/internal/infra/database"
)

// fakeStudentRepo is an in-memory student.Repository. failUpsertFor makes
// Upsert fail for one phone number so error isolation can be exercised.
type fakeStudentRepo struct {
	records       map[string]*student.Record
	failUpsertFor string
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{records: make(map[string]*student.Record)}
}

func (f *fakeStudentRepo) GetByUniqueID(_ context.Context, uniqueID string) (*student.Record, error) {
	rec, ok := f.records[uniqueID]
	if !ok {
		return nil, idb.ErrStudentNotFound
	}
	return rec, nil
}

func (f *fakeStudentRepo) Upsert(_ context.Context, rec *student.Record) error {
	if f.failUpsertFor != "" && rec.PhoneNumber == f.failUpsertFor {
		return errors.New("write failed")
	}
	f.records[rec.UniqueID] = rec
	return nil
}

func (f *fakeStudentRepo) LatestPracticeDates(_ context.Context) (map[string]time.Time, error) {
	latest := make(map[string]time.Time)
	for _, rec := range f.records {
		if rec.LastPracticeAt != nil {
			latest[rec.PhoneNumber] = *rec.LastPracticeAt
		}
	}
	return latest, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func event(phone, name, lesson string, kind activity.Kind, occurredAt string) activity.Event {
	return activity.Event{
		PhoneNumber: phone,
		Name:        name,
		Lesson:      lesson,
		Teacher:     "Noa",
		Kind:        kind,
		OccurredAt:  occurredAt,
	}
}

func TestIngest_EmptyBatch(t *testing.T) {
	svc := NewIngestService(newFakeStudentRepo(), quietLogger())

	stats, err := svc.Ingest(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, &BatchStats{}, stats)
}

func TestIngest_NewAndUpdatedStudents(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewIngestService(repo, quietLogger())

	stats, err := svc.Ingest(context.Background(), []activity.Event{
		event("972 54-123-4567", "Dana Levi", "3", activity.KindPractice, "10:00, 01.02.2024"),
		event("972 54-123-4567", "Dana Levi", "3", activity.KindMessage, "10:05, 01.02.2024"),
		event("972 52-888-9999", "Yossi Cohen", "1", activity.KindMessage, "11:00, 01.02.2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, stats.StudentsProcessed)
	assert.Equal(t, 2, stats.NewStudents)
	assert.Equal(t, 0, stats.UpdatedStudents)
	assert.Equal(t, 2, stats.MessagesAccepted)
	assert.Equal(t, 1, stats.PracticesAccepted)
	assert.Equal(t, 0, stats.Errors)
	assert.Len(t, repo.records, 2)

	// Second batch for a now-known student counts as an update.
	stats, err = svc.Ingest(context.Background(), []activity.Event{
		event("972 54-123-4567", "Dana Levi", "3", activity.KindPractice, "12:00, 01.02.2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.StudentsProcessed)
	assert.Equal(t, 0, stats.NewStudents)
	assert.Equal(t, 1, stats.UpdatedStudents)
	assert.Equal(t, 1, stats.PracticesAccepted)

	id := student.ComputeUniqueID("972 54-123-4567", "Dana Levi")
	require.Contains(t, repo.records, id)
	assert.Equal(t, 2, repo.records[id].Lessons[0].PracticeCount)
}

func TestIngest_DuplicateBatchAcceptsNothing(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewIngestService(repo, quietLogger())
	batch := []activity.Event{
		event("972 54-123-4567", "Dana Levi", "3", activity.KindPractice, "10:00, 01.02.2024"),
	}

	_, err := svc.Ingest(context.Background(), batch)
	require.NoError(t, err)

	stats, err := svc.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UpdatedStudents)
	assert.Equal(t, 0, stats.PracticesAccepted)
	assert.Equal(t, 0, stats.MessagesAccepted)
}

func TestIngest_MalformedEventsCountedAsErrors(t *testing.T) {
	svc := NewIngestService(newFakeStudentRepo(), quietLogger())

	stats, err := svc.Ingest(context.Background(), []activity.Event{
		event("972 54-123-4567", "Dana Levi", "3", activity.KindPractice, "garbage"),
		event("972 54-123-4567", "Dana Levi", "3", activity.KindMessage, "10:05, 01.02.2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.MessagesAccepted)
	assert.Equal(t, 0, stats.PracticesAccepted)
	assert.Equal(t, 1, stats.StudentsProcessed)
}

func TestIngest_FailureIsolation(t *testing.T) {
	repo := newFakeStudentRepo()
	repo.failUpsertFor = "972 54-123-4567"
	svc := NewIngestService(repo, quietLogger())

	stats, err := svc.Ingest(context.Background(), []activity.Event{
		event("972 54-123-4567", "Dana Levi", "3", activity.KindPractice, "10:00, 01.02.2024"),
		event("972 52-888-9999", "Yossi Cohen", "1", activity.KindMessage, "11:00, 01.02.2024"),
	})

	// One student failing to persist does not abort the batch.
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.StudentsProcessed)
	assert.Equal(t, 1, stats.NewStudents)
	assert.Len(t, repo.records, 1)
}
