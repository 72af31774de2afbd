package activity

import "context"

// Kind distinguishes the two activity types tracked per student.
type Kind string

const (
	KindMessage  Kind = "message"
	KindPractice Kind = "practice"
)

// Event is one timestamped student activity, already enriched with the
// student's directory data. Events are consumed during a merge and never
// stored verbatim. OccurredAt keeps the source's textual form; the merge
// engine parses it and skips the event if it is unreadable.
type Event struct {
	PhoneNumber string
	Name        string
	Lesson      string
	Teacher     string
	Kind        Kind
	OccurredAt  string
}

// RawMessage is a chat message exactly as the export source delivers it,
// before classification and enrichment.
type RawMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Source supplies batches of raw chat messages. The mechanics of producing
// an export (browser automation against the chat web client) live outside
// this codebase.
type Source interface {
	Fetch(ctx context.Context) ([]RawMessage, error)
}
