package report

import (
	"context"
	"time"
)

// Stats summarizes one dashboard sync run.
type Stats struct {
	TotalChecked  int
	UpdatesNeeded int
	NoChanges     int
	NotFound      int
}

// Sink receives the read-only reporting projection: the latest practice
// instant per student, keyed by phone number. Implementations decide how
// (and whether) to surface it.
type Sink interface {
	SyncPracticeDates(ctx context.Context, latest map[string]time.Time) (*Stats, error)
}
