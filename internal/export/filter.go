package export

import (
	"strings"
	"time"

	"nuanswers/internal/errors"
	"nuanswers/models"
)

// DateLayout is the calendar-day form accepted for from/to bounds
const DateLayout = "2006-01-02"

// ParseFilter builds a registrations filter from calendar days in loc, both
// inclusive, and major/campus lists whose entries may also be comma-separated.
// Empty inputs leave that dimension unrestricted.
func ParseFilter(from, to string, majors, campuses []string, loc *time.Location) (models.RegistrationFilter, error) {
	if loc == nil {
		loc = time.UTC
	}
	var f models.RegistrationFilter

	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return f, errors.InvalidInput("from must be YYYY-MM-DD")
		}
		start := t.UTC()
		f.From = &start
	}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return f, errors.InvalidInput("to must be YYYY-MM-DD")
		}
		// the store treats To as exclusive
		end := t.AddDate(0, 0, 1).UTC()
		f.To = &end
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, errors.InvalidInput("from must not be after to")
	}

	f.Majors = splitList(majors)
	f.Campuses = splitList(campuses)
	return f, nil
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
