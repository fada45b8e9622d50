package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CivilDate is a calendar day with no time-of-day. Document dates are
// day-granular; carrying a time.Time around caused the classic
// timezone day-shift when values were serialized from a non-UTC client,
// so the wire form is always midnight UTC.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

const wireDateLayout = "2006-01-02T15:04:05Z07:00"

var civilDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

// ParseCivilDate reads the calendar day as written, ignoring any
// time-of-day or offset the source attached to it.
func ParseCivilDate(value string) (CivilDate, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return CivilDate{}, nil
	}
	for _, layout := range civilDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return CivilDate{Year: y, Month: m, Day: d}, nil
	}
	return CivilDate{}, fmt.Errorf("parse civil date %q", value)
}

func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

func (d CivilDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders the day-only form used for display and matching.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Wire renders the midnight-UTC form sent to the EDO API. Zero dates
// render as an empty string so optional fields stay blank.
func (d CivilDate) Wire() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(wireDateLayout)
}

// UTC returns midnight UTC of the calendar day.
func (d CivilDate) UTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d CivilDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Wire())
}

func (d *CivilDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = CivilDate{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("civil date: %w", err)
	}
	parsed, err := ParseCivilDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
