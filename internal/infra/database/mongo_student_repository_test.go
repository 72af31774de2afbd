package database

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/student"
)

func testRepo() *MongoStudentRepository {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewMongoStudentRepository(nil, logger)
}

func TestToRecord_DecodesDriverShapes(t *testing.T) {
	repo := testRepo()

	// The driver hands lesson entries back as bson.D; older writes can
	// surface as bson.M.
	doc := &studentDocument{
		UniqueID:      "abc123",
		PhoneNumber:   "972 54-123-4567",
		Name:          "Dana Levi",
		CurrentLesson: "3",
		Lessons: bson.A{
			bson.D{
				{Key: "lesson", Value: "3"},
				{Key: "teacher", Value: "Noa"},
				{Key: "practice_count", Value: int32(2)},
				{Key: "message_count", Value: int64(1)},
				{Key: "paid", Value: true},
				{Key: "last_practice", Value: "10:00, 01.02.2024"},
			},
			bson.M{"lesson": "4"},
			"corrupt entry",
		},
		LastPracticeAt: "10:00, 01.02.2024",
		CreatedAt:      "08:00, 01.01.2024",
		UpdatedAt:      "11:00, 01.02.2024",
	}

	rec := repo.toRecord(doc)

	assert.Equal(t, "abc123", rec.UniqueID)
	require.Len(t, rec.Lessons, 2, "corrupt entries are dropped, not fatal")

	assert.Equal(t, "3", rec.Lessons[0].Lesson)
	assert.Equal(t, "Noa", rec.Lessons[0].Teacher)
	assert.Equal(t, 2, rec.Lessons[0].PracticeCount)
	assert.Equal(t, 1, rec.Lessons[0].MessageCount)
	assert.True(t, rec.Lessons[0].Paid)
	require.NotNil(t, rec.Lessons[0].LastPractice)

	assert.Equal(t, "4", rec.Lessons[1].Lesson)
	assert.Equal(t, 0, rec.Lessons[1].PracticeCount)

	require.NotNil(t, rec.LastPracticeAt)
	assert.Nil(t, rec.LastMessageAt)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), rec.CreatedAt)
}

func TestToRecord_UnreadableTimestampsTreatedAsAbsent(t *testing.T) {
	repo := testRepo()

	rec := repo.toRecord(&studentDocument{
		UniqueID:       "abc123",
		LastMessageAt:  "garbage",
		LastPracticeAt: "",
	})

	assert.Nil(t, rec.LastMessageAt)
	assert.Nil(t, rec.LastPracticeAt)
	assert.True(t, rec.CreatedAt.IsZero())
}

func TestLessonsToDocuments(t *testing.T) {
	last := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	docs := lessonsToDocuments([]student.LessonStat{
		{Lesson: "3", Teacher: "Noa", PracticeCount: 2, LastPractice: &last, FirstPractice: &last},
		{Lesson: "4", MessageCount: 1},
	})

	require.Len(t, docs, 2)
	assert.Equal(t, "10:00, 01.02.2024", docs[0].LastPractice)
	assert.Equal(t, "10:00, 01.02.2024", docs[0].FirstPractice)
	assert.Empty(t, docs[1].LastPractice, "absent marks serialize as absent, never as a zero time")
}
