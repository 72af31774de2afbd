package runlog

import "context"

// Repository persists run log entries.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
}
