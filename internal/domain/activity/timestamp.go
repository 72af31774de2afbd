package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the canonical display format for timestamps, both in chat
// exports and in persisted student documents: 24-hour "HH:MM, DD.MM.YYYY".
const TimeLayout = "15:04, 02.01.2006"

// ErrMalformedTimestamp reports timestamp text that matches none of the
// accepted layouts.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Accepted input layouts, canonical form first. The slash variants cover
// exports produced before the display format change; time.Parse accepts a
// fractional second after the seconds field even when the layout omits it,
// so RFC3339 also covers fractional-second inputs.
var timeLayouts = []string{
	TimeLayout,
	"15:04, 1/2/2006",
	"3:04 PM, 1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses text against the accepted layouts and returns the
// first match. It fails with ErrMalformedTimestamp when nothing matches.
func ParseTimestamp(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty text", ErrMalformedTimestamp)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, text)
}

// FormatTimestamp renders t in the canonical display format. ParseTimestamp
// always accepts FormatTimestamp's output.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimeLayout)
}
