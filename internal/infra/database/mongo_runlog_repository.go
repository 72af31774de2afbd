package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/runlog"
)

type MongoRunLogRepository struct {
	coll *mongo.Collection
}

func NewMongoRunLogRepository(coll *mongo.Collection) *MongoRunLogRepository {
	return &MongoRunLogRepository{coll: coll}
}

type runLogDocument struct {
	RunID             string            `bson:"run_id"`
	Source            string            `bson:"source"`
	LogLevel          string            `bson:"log_level"`
	Timestamp         time.Time         `bson:"timestamp"`
	MessagesScanned   int               `bson:"messages_scanned"`
	StudentsProcessed int               `bson:"students_processed"`
	NewStudents       int               `bson:"new_students"`
	UpdatedStudents   int               `bson:"updated_students"`
	MessagesAccepted  int               `bson:"messages_accepted"`
	PracticesAccepted int               `bson:"practices_accepted"`
	Errors            int               `bson:"errors"`
	TotalRunTime      float64           `bson:"total_run_time"`
	Success           bool              `bson:"success"`
	ErrorMessage      string            `bson:"error_message,omitempty"`
	Metadata          map[string]string `bson:"metadata,omitempty"`
}

func (r *MongoRunLogRepository) Insert(ctx context.Context, entry *runlog.Entry) error {
	doc := runLogDocument{
		RunID:             entry.ID,
		Source:            entry.Source,
		LogLevel:          entry.LogLevel,
		Timestamp:         entry.Timestamp,
		MessagesScanned:   entry.MessagesScanned,
		StudentsProcessed: entry.StudentsProcessed,
		NewStudents:       entry.NewStudents,
		UpdatedStudents:   entry.UpdatedStudents,
		MessagesAccepted:  entry.MessagesAccepted,
		PracticesAccepted: entry.PracticesAccepted,
		Errors:            entry.Errors,
		TotalRunTime:      entry.TotalRunTime,
		Success:           entry.Success,
		ErrorMessage:      entry.ErrorMessage,
		Metadata:          entry.Metadata,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error inserting run log entry: %w", err)
	}
	return nil
}
