package roster

import (
	"context"
	"strings"
)

// Student is one row of the student directory sheet.
type Student struct {
	PhoneNumber string
	Name        string
	Lesson      string
	Teacher     string
}

// Roster is the student directory indexed for sender lookup: by cleaned
// phone number and, as a fallback, by lowercased display name.
type Roster struct {
	byPhone map[string]Student
	byName  map[string]Student
}

// Provider loads the current student directory.
type Provider interface {
	Load(ctx context.Context) (*Roster, error)
}

// StaticProvider serves a fixed, pre-built roster. Used when no external
// directory is configured, and in tests.
type StaticProvider struct {
	Roster *Roster
}

func (p StaticProvider) Load(_ context.Context) (*Roster, error) {
	return p.Roster, nil
}

// New builds a Roster from directory rows. Phone numbers are normalized
// before indexing; rows without a phone number are skipped.
func New(students []Student) *Roster {
	r := &Roster{
		byPhone: make(map[string]Student, len(students)),
		byName:  make(map[string]Student, len(students)),
	}
	for _, s := range students {
		phone := CleanPhoneNumber(s.PhoneNumber)
		if phone == "" {
			continue
		}
		s.PhoneNumber = phone
		r.byPhone[phone] = s
		if s.Name != "" {
			r.byName[strings.ToLower(s.Name)] = s
		}
	}
	return r
}

// Len returns the number of students indexed by phone number.
func (r *Roster) Len() int {
	return len(r.byPhone)
}

// LookupSender resolves a chat sender to a directory entry. The sender is
// tried as a phone number first, then as a display name.
func (r *Roster) LookupSender(sender string) (Student, bool) {
	if s, ok := r.byPhone[CleanPhoneNumber(sender)]; ok {
		return s, true
	}
	if s, ok := r.byName[strings.ToLower(strings.TrimSpace(sender))]; ok {
		return s, true
	}
	return Student{}, false
}
