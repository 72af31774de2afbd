package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/report"
	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/roster"
)

// sheetDateLayout is the short date format used in the last-practice column.
const sheetDateLayout = "02/01/06"

// PracticeReporter mirrors the latest practice dates into column D of
// the directory worksheet. Rows whose phone number is not present in
// the latest map are left untouched.
type PracticeReporter struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
	logger        *logrus.Logger
}

func NewPracticeReporter(svc *gsheets.Service, spreadsheetID, worksheet string, logger *logrus.Logger) *PracticeReporter {
	return &PracticeReporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        logger,
	}
}

func (r *PracticeReporter) SyncPracticeDates(ctx context.Context, latest map[string]time.Time) (*report.Stats, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read directory sheet: %w", err)
	}

	stats := &report.Stats{}
	matched := make(map[string]bool, len(latest))
	var updates []*gsheets.ValueRange

	for i, row := range resp.Values {
		if i == 0 {
			continue // header row
		}
		phone := roster.CleanPhoneNumber(cell(row, colPhone))
		if phone == "" {
			continue
		}

		stats.TotalChecked++
		at, ok := latest[phone]
		if !ok {
			continue
		}
		matched[phone] = true

		want := at.Format(sheetDateLayout)
		if cell(row, colPractice) == want {
			stats.NoChanges++
			continue
		}

		rowNum := i + 1 // sheet rows are 1-based
		updates = append(updates, &gsheets.ValueRange{
			Range:  fmt.Sprintf("%s!D%d", r.worksheet, rowNum),
			Values: [][]interface{}{{want}},
		})
		stats.UpdatesNeeded++
	}

	for phone := range latest {
		if !matched[phone] {
			stats.NotFound++
			r.logger.Warnf("Student with phone %s has practice data but no directory row.", phone)
		}
	}

	if len(updates) > 0 {
		req := &gsheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             updates,
		}
		if _, err := r.svc.Spreadsheets.Values.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("failed to write practice dates: %w", err)
		}
	}

	r.logger.Infof("Dashboard sync: %d checked, %d updated, %d unchanged, %d without a row.",
		stats.TotalChecked, stats.UpdatesNeeded, stats.NoChanges, stats.NotFound)
	return stats, nil
}
