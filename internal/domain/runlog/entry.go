package runlog

import "time"

// Levels used for run log entries.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Entry records the outcome of one ETL run for the operations log
// collection.
type Entry struct {
	ID                string
	Source            string
	LogLevel          string
	Timestamp         time.Time
	MessagesScanned   int
	StudentsProcessed int
	NewStudents       int
	UpdatedStudents   int
	MessagesAccepted  int
	PracticesAccepted int
	Errors            int
	TotalRunTime      float64 // seconds
	Success           bool
	ErrorMessage      string
	Metadata          map[string]string
}
