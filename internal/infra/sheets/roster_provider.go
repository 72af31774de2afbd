package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/roster"
)

// Directory sheet columns (0-based):
// A=phone number, B=name, C=current lesson, D=last practice, E=teacher.
const (
	colPhone    = 0
	colName     = 1
	colLesson   = 2
	colPractice = 3
	colTeacher  = 4
)

// RosterProvider loads the student directory from the main worksheet.
type RosterProvider struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
	logger        *logrus.Logger
}

func NewRosterProvider(svc *gsheets.Service, spreadsheetID, worksheet string, logger *logrus.Logger) *RosterProvider {
	return &RosterProvider{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        logger,
	}
}

func (p *RosterProvider) Load(ctx context.Context) (*roster.Roster, error) {
	resp, err := p.svc.Spreadsheets.Values.Get(p.spreadsheetID, p.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read directory sheet: %w", err)
	}
	if len(resp.Values) == 0 {
		p.logger.Warn("Directory sheet is empty.")
		return roster.New(nil), nil
	}

	students := make([]roster.Student, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] { // skip header row
		phone := cell(row, colPhone)
		if phone == "" {
			continue
		}
		students = append(students, roster.Student{
			PhoneNumber: phone,
			Name:        cell(row, colName),
			Lesson:      cell(row, colLesson),
			Teacher:     cell(row, colTeacher),
		})
	}

	directory := roster.New(students)
	p.logger.Infof("Loaded %d students from the directory sheet.", directory.Len())
	return directory, nil
}
