package student

import (
	"sort"
	"time"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
)

// MergeResult summarizes how much of one student's batch was actually
// incorporated. Rejected duplicates count nowhere; events with unreadable
// timestamps are surfaced so the caller can report them.
type MergeResult struct {
	MessagesAccepted  int
	PracticesAccepted int
	MalformedEvents   int
}

// Merge folds a batch of events for one student into the student's
// existing record (nil when the student has never been seen) and returns
// the new record state plus whether it was newly created.
//
// Events are sorted by occurrence time before processing, ties keeping
// their original position, so per-lesson increments are deterministic no
// matter how the caller assembled the batch. A message is accepted when it
// is strictly newer than the student-level message mark; a practice must
// beat the student-level practice mark and then the lesson's own mark.
// When the lesson rejects (its mark can run ahead of the student's after a
// backfill), the student-level mark stays put.
//
// An empty batch is a no-op: the existing record comes back unchanged.
func Merge(existing *Record, events []activity.Event, now time.Time) (*Record, bool, MergeResult) {
	var res MergeResult

	if len(events) == 0 {
		return existing, false, res
	}

	first := events[0]
	isNew := existing == nil

	rec := &Record{
		UniqueID:      ComputeUniqueID(first.PhoneNumber, first.Name),
		PhoneNumber:   first.PhoneNumber,
		Name:          first.Name,
		CurrentLesson: first.Lesson,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var (
		lastMessage, lastPractice time.Time
		haveMessage, havePractice bool
	)
	var ledger *Ledger
	if existing != nil {
		// The id is assigned once and never recomputed, even if the
		// stored phone or name has since drifted from the batch's.
		rec.UniqueID = existing.UniqueID
		rec.CreatedAt = existing.CreatedAt
		if existing.LastMessageAt != nil {
			lastMessage, haveMessage = *existing.LastMessageAt, true
		}
		if existing.LastPracticeAt != nil {
			lastPractice, havePractice = *existing.LastPracticeAt, true
		}
		ledger = NewLedger(existing.Lessons)
	} else {
		ledger = NewLedger(nil)
	}

	type timedEvent struct {
		event activity.Event
		at    time.Time
	}
	timed := make([]timedEvent, 0, len(events))
	for _, ev := range events {
		at, err := activity.ParseTimestamp(ev.OccurredAt)
		if err != nil {
			res.MalformedEvents++
			continue
		}
		timed = append(timed, timedEvent{event: ev, at: at})
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	for _, te := range timed {
		switch te.event.Kind {
		case activity.KindMessage:
			if haveMessage && !te.at.After(lastMessage) {
				continue
			}
			ledger.AcceptMessage(te.event.Lesson, te.event.Teacher, te.at)
			lastMessage, haveMessage = te.at, true
			res.MessagesAccepted++

		case activity.KindPractice:
			if havePractice && !te.at.After(lastPractice) {
				continue
			}
			if !ledger.AcceptPractice(te.event.Lesson, te.event.Teacher, te.at) {
				continue
			}
			lastPractice, havePractice = te.at, true
			res.PracticesAccepted++
		}
	}

	ledger.EnsureLesson(rec.CurrentLesson)
	rec.Lessons = ledger.Sorted()

	if haveMessage {
		t := lastMessage
		rec.LastMessageAt = &t
	}
	if havePractice {
		t := lastPractice
		rec.LastPracticeAt = &t
	}

	return rec, isNew, res
}
