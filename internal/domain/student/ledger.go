package student

import (
	"fmt"
	"sort"
	"strconv"
	"time"
	"unicode"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
)

// CorruptLedgerEntryError describes one persisted lesson entry dropped
// during sanitization. Dropping an entry is a tolerated partial failure,
// never fatal to the merge.
type CorruptLedgerEntryError struct {
	Index  int
	Reason string
}

func (e *CorruptLedgerEntryError) Error() string {
	return fmt.Sprintf("corrupt ledger entry at index %d: %s", e.Index, e.Reason)
}

// SanitizeLessons coerces a persisted lessons array into clean LessonStats.
// The collection has carried several document shapes over time, so every
// field is coerced defensively: entries that are not documents, or that
// lack a lesson label, are dropped (reported via the returned errors);
// counters fall back to 0, paid to false, and unparsable timestamps are
// left absent.
func SanitizeLessons(raw []any) ([]LessonStat, []error) {
	lessons := make([]LessonStat, 0, len(raw))
	var warnings []error

	for i, entry := range raw {
		doc, ok := entry.(map[string]any)
		if !ok {
			warnings = append(warnings, &CorruptLedgerEntryError{Index: i, Reason: fmt.Sprintf("not a document (%T)", entry)})
			continue
		}
		label := coerceString(doc["lesson"])
		if label == "" {
			warnings = append(warnings, &CorruptLedgerEntryError{Index: i, Reason: "missing lesson label"})
			continue
		}
		lessons = append(lessons, LessonStat{
			Lesson:        label,
			Teacher:       coerceString(doc["teacher"]),
			PracticeCount: coerceCount(doc["practice_count"]),
			MessageCount:  coerceCount(doc["message_count"]),
			FirstPractice: coerceTime(doc["first_practice"]),
			LastPractice:  coerceTime(doc["last_practice"]),
			Paid:          coerceBool(doc["paid"]),
		})
	}
	return lessons, warnings
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

func coerceCount(v any) int {
	var n int
	switch c := v.(type) {
	case int:
		n = c
	case int32:
		n = int(c)
	case int64:
		n = int(c)
	case float64:
		n = int(c)
	case string:
		parsed, err := strconv.Atoi(c)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return n
}

func coerceBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func coerceTime(v any) *time.Time {
	switch c := v.(type) {
	case time.Time:
		return &c
	case string:
		t, err := activity.ParseTimestamp(c)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}

// Ledger is the per-student map from lesson label to its statistics,
// maintained for the duration of one merge. Insertion order is kept so
// unnumbered lessons serialize in a stable relative order.
type Ledger struct {
	stats map[string]*LessonStat
	order []string
}

// NewLedger builds a Ledger from already-sanitized lesson entries.
func NewLedger(lessons []LessonStat) *Ledger {
	l := &Ledger{stats: make(map[string]*LessonStat, len(lessons))}
	for _, ls := range lessons {
		if _, ok := l.stats[ls.Lesson]; ok {
			continue
		}
		entry := ls
		l.stats[ls.Lesson] = &entry
		l.order = append(l.order, ls.Lesson)
	}
	return l
}

// AcceptPractice records a practice submission for a lesson. For an
// existing lesson the event is accepted only if it is strictly newer than
// the lesson's last recorded practice; rejection means a duplicate or
// out-of-order event and is not an error. Acceptance bumps the counter,
// reassigns the teacher (teacher assignment can change over time) and
// advances the lesson's practice marks.
func (l *Ledger) AcceptPractice(lesson, teacher string, at time.Time) bool {
	ls, ok := l.stats[lesson]
	if !ok {
		first := at
		last := at
		l.insert(&LessonStat{
			Lesson:        lesson,
			Teacher:       teacher,
			PracticeCount: 1,
			FirstPractice: &first,
			LastPractice:  &last,
		})
		return true
	}

	if ls.LastPractice != nil && !at.After(*ls.LastPractice) {
		return false
	}
	ls.PracticeCount++
	ls.Teacher = teacher
	last := at
	ls.LastPractice = &last
	if ls.FirstPractice == nil {
		first := at
		ls.FirstPractice = &first
	}
	return true
}

// AcceptMessage records a sent message against a lesson. Message dedup is
// gated at the student level, not here, so an existing lesson's counter is
// incremented unconditionally.
func (l *Ledger) AcceptMessage(lesson, teacher string, at time.Time) {
	ls, ok := l.stats[lesson]
	if !ok {
		l.insert(&LessonStat{
			Lesson:       lesson,
			Teacher:      teacher,
			MessageCount: 1,
		})
		return
	}
	ls.MessageCount++
}

// EnsureLesson inserts a zero-state entry for the student's current lesson
// so the active lesson is visible even before any activity reaches it.
func (l *Ledger) EnsureLesson(lesson string) {
	if lesson == "" {
		return
	}
	if _, ok := l.stats[lesson]; ok {
		return
	}
	l.insert(&LessonStat{Lesson: lesson})
}

func (l *Ledger) insert(ls *LessonStat) {
	l.stats[ls.Lesson] = ls
	l.order = append(l.order, ls.Lesson)
}

// Sorted returns the lessons ordered ascending by the integer formed by
// the digits in the label. Labels with no digits sort after all numbered
// labels, keeping their relative order.
func (l *Ledger) Sorted() []LessonStat {
	out := make([]LessonStat, 0, len(l.order))
	for _, label := range l.order {
		out = append(out, *l.stats[label])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ni, iNum := lessonSortKey(out[i].Lesson)
		nj, jNum := lessonSortKey(out[j].Lesson)
		if iNum != jNum {
			return iNum
		}
		if !iNum {
			return false
		}
		return ni < nj
	})
	return out
}

// lessonSortKey concatenates the ASCII digits of a label into its sort
// number. The second return value is false for labels with no usable
// number.
func lessonSortKey(label string) (int64, bool) {
	var digits []rune
	for _, r := range label {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
