package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(text string) time.Time {
	t, err := time.Parse("15:04, 02.01.2006", text)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSanitizeLessons(t *testing.T) {
	raw := []any{
		map[string]any{
			"lesson":         "שיעור 1",
			"teacher":        "Noa",
			"practice_count": int32(3),
			"message_count":  int64(2),
			"paid":           true,
			"first_practice": "10:00, 01.01.2024",
			"last_practice":  "10:00, 05.01.2024",
		},
		map[string]any{
			"lesson": "שיעור 2",
			// everything else absent
		},
		"not a document",
		map[string]any{
			"teacher": "orphan teacher, no lesson label",
		},
		map[string]any{
			"lesson":         "שיעור 3",
			"practice_count": "7",
			"message_count":  -4,
			"paid":           "yes",
			"last_practice":  "garbage",
		},
	}

	lessons, warnings := SanitizeLessons(raw)
	require.Len(t, lessons, 3)
	require.Len(t, warnings, 2)

	full := lessons[0]
	assert.Equal(t, "שיעור 1", full.Lesson)
	assert.Equal(t, "Noa", full.Teacher)
	assert.Equal(t, 3, full.PracticeCount)
	assert.Equal(t, 2, full.MessageCount)
	assert.True(t, full.Paid)
	require.NotNil(t, full.FirstPractice)
	require.NotNil(t, full.LastPractice)
	assert.True(t, full.LastPractice.Equal(ts("10:00, 05.01.2024")))

	sparse := lessons[1]
	assert.Equal(t, 0, sparse.PracticeCount)
	assert.Equal(t, 0, sparse.MessageCount)
	assert.False(t, sparse.Paid)
	assert.Nil(t, sparse.FirstPractice)
	assert.Nil(t, sparse.LastPractice)

	messy := lessons[2]
	assert.Equal(t, 7, messy.PracticeCount, "numeric strings are parsed")
	assert.Equal(t, 0, messy.MessageCount, "negative counters clamp to zero")
	assert.False(t, messy.Paid, "non-bool paid falls back to false")
	assert.Nil(t, messy.LastPractice, "unparsable timestamps stay absent")

	for _, w := range warnings {
		var entryErr *CorruptLedgerEntryError
		require.ErrorAs(t, w, &entryErr)
	}
}

func TestLedger_AcceptPractice(t *testing.T) {
	l := NewLedger(nil)

	require.True(t, l.AcceptPractice("שיעור 1", "Noa", ts("10:00, 01.01.2024")))

	t.Run("duplicate timestamp rejected", func(t *testing.T) {
		assert.False(t, l.AcceptPractice("שיעור 1", "Noa", ts("10:00, 01.01.2024")))
	})

	t.Run("older timestamp rejected", func(t *testing.T) {
		assert.False(t, l.AcceptPractice("שיעור 1", "Noa", ts("09:00, 01.01.2024")))
	})

	t.Run("newer timestamp accepted and advances marks", func(t *testing.T) {
		require.True(t, l.AcceptPractice("שיעור 1", "Avi", ts("10:00, 02.01.2024")))

		lessons := l.Sorted()
		require.Len(t, lessons, 1)
		assert.Equal(t, 2, lessons[0].PracticeCount)
		assert.Equal(t, "Avi", lessons[0].Teacher, "teacher reassignment is recorded")
		assert.True(t, lessons[0].FirstPractice.Equal(ts("10:00, 01.01.2024")))
		assert.True(t, lessons[0].LastPractice.Equal(ts("10:00, 02.01.2024")))
	})
}

func TestLedger_AcceptPractice_NewLesson(t *testing.T) {
	l := NewLedger(nil)
	at := ts("10:00, 01.01.2024")

	require.True(t, l.AcceptPractice("שיעור 2", "Noa", at))

	lessons := l.Sorted()
	require.Len(t, lessons, 1)
	assert.Equal(t, 1, lessons[0].PracticeCount)
	assert.True(t, lessons[0].FirstPractice.Equal(at))
	assert.True(t, lessons[0].LastPractice.Equal(at))
}

func TestLedger_AcceptMessage(t *testing.T) {
	l := NewLedger(nil)

	l.AcceptMessage("שיעור 1", "Noa", ts("10:00, 01.01.2024"))
	l.AcceptMessage("שיעור 1", "Noa", ts("11:00, 01.01.2024"))

	lessons := l.Sorted()
	require.Len(t, lessons, 1)
	assert.Equal(t, 2, lessons[0].MessageCount)
	assert.Equal(t, 0, lessons[0].PracticeCount)
	assert.Nil(t, lessons[0].LastPractice, "messages never touch practice marks")
}

func TestLedger_EnsureLesson(t *testing.T) {
	l := NewLedger([]LessonStat{{Lesson: "שיעור 1", PracticeCount: 2}})

	l.EnsureLesson("שיעור 2")
	l.EnsureLesson("שיעור 1") // existing entry untouched
	l.EnsureLesson("")        // blank label ignored

	lessons := l.Sorted()
	require.Len(t, lessons, 2)
	assert.Equal(t, 2, lessons[0].PracticeCount)
	assert.Equal(t, "שיעור 2", lessons[1].Lesson)
	assert.Equal(t, 0, lessons[1].PracticeCount)
}

func TestLedger_SortedOrder(t *testing.T) {
	l := NewLedger(nil)
	at := ts("10:00, 01.01.2024")

	l.AcceptPractice("שיעור 10", "Noa", at)
	l.AcceptMessage("intro", "Noa", at)
	l.AcceptPractice("שיעור 2", "Noa", at)
	l.AcceptMessage("warmup", "Noa", at)

	var labels []string
	for _, ls := range l.Sorted() {
		labels = append(labels, ls.Lesson)
	}

	// Numeric labels ascending by value, then unnumbered labels in their
	// insertion order.
	assert.Equal(t, []string{"שיעור 2", "שיעור 10", "intro", "warmup"}, labels)
}

func TestNewLedger_DuplicateLabelsKeepFirst(t *testing.T) {
	l := NewLedger([]LessonStat{
		{Lesson: "שיעור 1", PracticeCount: 5},
		{Lesson: "שיעור 1", PracticeCount: 9},
	})

	lessons := l.Sorted()
	require.Len(t, lessons, 1)
	assert.Equal(t, 5, lessons[0].PracticeCount)
}
