package student

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LessonStat holds one lesson's statistics for one student.
type LessonStat struct {
	Lesson        string
	Teacher       string
	PracticeCount int
	MessageCount  int
	FirstPractice *time.Time
	LastPractice  *time.Time
	Paid          bool
}

// Record is the consolidated progress document for one student. UniqueID is
// derived from (phone number, name) on first sight and never recomputed
// afterwards; LastMessageAt and LastPracticeAt are high-water marks over
// all events ever accepted for the student and only move forward.
type Record struct {
	UniqueID       string
	PhoneNumber    string
	Name           string
	CurrentLesson  string
	Lessons        []LessonStat
	LastMessageAt  *time.Time
	LastPracticeAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ComputeUniqueID derives the stable record key from a student's phone
// number and display name. Identical inputs always produce the identical
// id; any change to either input produces a different one.
func ComputeUniqueID(phoneNumber, name string) string {
	sum := sha256.Sum256([]byte(phoneNumber + "|" + name))
	return hex.EncodeToString(sum[:])[:32]
}
