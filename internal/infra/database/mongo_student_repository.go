package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/activity"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/student"
)

// Custom errors
var ErrStudentNotFound = fmt.Errorf("student record not found")

// Field names of schemas this collection carried before the lessons array
// became the single source of truth. Every upsert clears them.
var deprecatedFields = bson.M{
	"total_messages":         "",
	"last_message_timedate":  "",
	"last_practice_timedate": "",
}

type MongoStudentRepository struct {
	coll   *mongo.Collection
	logger *logrus.Logger
}

func NewMongoStudentRepository(coll *mongo.Collection, logger *logrus.Logger) *MongoStudentRepository {
	return &MongoStudentRepository{coll: coll, logger: logger}
}

// studentDocument is the persisted record shape. All timestamps are stored
// as canonical display strings; the lessons array is decoded loosely so
// entries written by older schema versions survive until sanitization.
type studentDocument struct {
	UniqueID       string `bson:"uniq_id"`
	PhoneNumber    string `bson:"phone_number"`
	Name           string `bson:"name"`
	CurrentLesson  string `bson:"current_lesson"`
	Lessons        bson.A `bson:"lessons"`
	LastMessageAt  string `bson:"last_message_at,omitempty"`
	LastPracticeAt string `bson:"last_practice_at,omitempty"`
	CreatedAt      string `bson:"created_at,omitempty"`
	UpdatedAt      string `bson:"updated_at,omitempty"`
}

type lessonDocument struct {
	Lesson        string `bson:"lesson"`
	Teacher       string `bson:"teacher"`
	PracticeCount int    `bson:"practice_count"`
	MessageCount  int    `bson:"message_count"`
	Paid          bool   `bson:"paid"`
	FirstPractice string `bson:"first_practice,omitempty"`
	LastPractice  string `bson:"last_practice,omitempty"`
}

func (r *MongoStudentRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*student.Record, error) {
	var doc studentDocument
	err := r.coll.FindOne(ctx, bson.M{"uniq_id": uniqueID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by unique ID: %w", err)
	}
	return r.toRecord(&doc), nil
}

func (r *MongoStudentRepository) Upsert(ctx context.Context, rec *student.Record) error {
	set := bson.M{
		"phone_number":   rec.PhoneNumber,
		"name":           rec.Name,
		"current_lesson": rec.CurrentLesson,
		"lessons":        lessonsToDocuments(rec.Lessons),
		"updated_at":     activity.FormatTimestamp(rec.UpdatedAt),
	}
	// High-water marks are written only when set, so an absent mark can
	// never overwrite a recorded one.
	if rec.LastMessageAt != nil {
		set["last_message_at"] = activity.FormatTimestamp(*rec.LastMessageAt)
	}
	if rec.LastPracticeAt != nil {
		set["last_practice_at"] = activity.FormatTimestamp(*rec.LastPracticeAt)
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": activity.FormatTimestamp(rec.CreatedAt)},
		"$unset":       deprecatedFields,
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"uniq_id": rec.UniqueID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error upserting student %s: %w", rec.UniqueID, err)
	}
	return nil
}

func (r *MongoStudentRepository) LatestPracticeDates(ctx context.Context) (map[string]time.Time, error) {
	filter := bson.M{"last_practice_at": bson.M{"$exists": true, "$ne": ""}}
	opts := options.Find().SetProjection(bson.M{"phone_number": 1, "last_practice_at": 1})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying latest practice dates: %w", err)
	}
	defer cursor.Close(ctx)

	latest := make(map[string]time.Time)
	for cursor.Next(ctx) {
		var doc struct {
			PhoneNumber    string `bson:"phone_number"`
			LastPracticeAt string `bson:"last_practice_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding practice date row: %w", err)
		}
		at, err := activity.ParseTimestamp(doc.LastPracticeAt)
		if err != nil {
			r.logger.Warnf("Skipping unreadable practice date %q for %s.", doc.LastPracticeAt, doc.PhoneNumber)
			continue
		}
		latest[doc.PhoneNumber] = at
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating practice dates: %w", err)
	}
	return latest, nil
}

func (r *MongoStudentRepository) toRecord(doc *studentDocument) *student.Record {
	raw := make([]any, 0, len(doc.Lessons))
	for _, entry := range doc.Lessons {
		raw = append(raw, normalizeLessonEntry(entry))
	}
	lessons, warnings := student.SanitizeLessons(raw)
	for _, w := range warnings {
		r.logger.Warnf("Student %s: %v - entry dropped.", doc.UniqueID, w)
	}

	rec := &student.Record{
		UniqueID:      doc.UniqueID,
		PhoneNumber:   doc.PhoneNumber,
		Name:          doc.Name,
		CurrentLesson: doc.CurrentLesson,
		Lessons:       lessons,
	}
	rec.LastMessageAt = parseOptionalTimestamp(doc.LastMessageAt, "last_message_at", doc.UniqueID, r.logger)
	rec.LastPracticeAt = parseOptionalTimestamp(doc.LastPracticeAt, "last_practice_at", doc.UniqueID, r.logger)
	if t := parseOptionalTimestamp(doc.CreatedAt, "created_at", doc.UniqueID, r.logger); t != nil {
		rec.CreatedAt = *t
	}
	if t := parseOptionalTimestamp(doc.UpdatedAt, "updated_at", doc.UniqueID, r.logger); t != nil {
		rec.UpdatedAt = *t
	}
	return rec
}

// normalizeLessonEntry unwraps the driver's document types so the domain
// sanitizer only ever sees plain maps.
func normalizeLessonEntry(entry any) any {
	switch v := entry.(type) {
	case bson.M:
		return map[string]any(v)
	case bson.D:
		return map[string]any(v.Map())
	default:
		return v
	}
}

// parseOptionalTimestamp tolerates unreadable historical timestamps by
// treating them as absent.
func parseOptionalTimestamp(text, field, uniqueID string, logger *logrus.Logger) *time.Time {
	if text == "" {
		return nil
	}
	t, err := activity.ParseTimestamp(text)
	if err != nil {
		logger.Warnf("Student %s: unreadable %s %q - treated as absent.", uniqueID, field, text)
		return nil
	}
	return &t
}

func lessonsToDocuments(lessons []student.LessonStat) []lessonDocument {
	docs := make([]lessonDocument, 0, len(lessons))
	for _, ls := range lessons {
		doc := lessonDocument{
			Lesson:        ls.Lesson,
			Teacher:       ls.Teacher,
			PracticeCount: ls.PracticeCount,
			MessageCount:  ls.MessageCount,
			Paid:          ls.Paid,
		}
		if ls.FirstPractice != nil {
			doc.FirstPractice = activity.FormatTimestamp(*ls.FirstPractice)
		}
		if ls.LastPractice != nil {
			doc.LastPractice = activity.FormatTimestamp(*ls.LastPractice)
		}
		docs = append(docs, doc)
	}
	return docs
}
