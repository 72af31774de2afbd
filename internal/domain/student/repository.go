package student

import (
	"context"
	"time"
)

// Repository defines persistence for student progress records. One record
// per student, keyed by UniqueID; Upsert replaces the lessons array and
// the computed marks wholesale.
type Repository interface {
	GetByUniqueID(ctx context.Context, uniqueID string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
	// LatestPracticeDates returns the last accepted practice instant per
	// phone number, for the dashboard sync. Students with no practices
	// are omitted.
	LatestPracticeDates(ctx context.Context) (map[string]time.Time, error)
}
