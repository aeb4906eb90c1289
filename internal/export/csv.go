package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"nuanswers/internal/errors"
	"nuanswers/models"
)

// RegistrationColumns is the CSV and spreadsheet header for registrations
var RegistrationColumns = []string{
	"id", "timestamp", "full_name", "student_id", "email", "grade", "campus", "major",
	"course_name", "course_id", "professor", "professor_email", "usage_time_minutes",
}

// WriteRegistrationsCSV writes a header row and one line per record
func WriteRegistrationsCSV(w io.Writer, recs []models.RegistrationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RegistrationColumns); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, r := range recs {
		if err := cw.Write(registrationRow(r)); err != nil {
			return errors.Wrapf(err, "write registration %d", r.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func registrationRow(r models.RegistrationRecord) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.FullName,
		r.StudentID,
		r.Email,
		r.Grade,
		r.Campus,
		r.Major,
		r.CourseName,
		r.CourseID,
		r.Professor,
		r.ProfessorEmail,
		strconv.FormatFloat(r.UsageTimeMinutes, 'g', -1, 64),
	}
}

// ReadRegistrationsCSV parses a file written by WriteRegistrationsCSV.
// Columns are matched by header name, so reordered files are accepted.
func ReadRegistrationsCSV(r io.Reader) ([]models.RegistrationRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput("csv file is empty")
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range RegistrationColumns {
		if _, ok := idx[col]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("csv is missing column %q", col))
		}
	}

	var recs []models.RegistrationRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		rec, err := parseRegistration(row, idx)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func parseRegistration(row []string, idx map[string]int) (models.RegistrationRecord, error) {
	get := func(col string) string { return row[idx[col]] }

	var rec models.RegistrationRecord
	id, err := strconv.ParseInt(get("id"), 10, 64)
	if err != nil {
		return rec, errors.InvalidInput("invalid id " + strconv.Quote(get("id")))
	}
	ts, err := time.Parse(time.RFC3339Nano, get("timestamp"))
	if err != nil {
		return rec, errors.InvalidInput("invalid timestamp " + strconv.Quote(get("timestamp")))
	}
	usage, err := strconv.ParseFloat(get("usage_time_minutes"), 64)
	if err != nil {
		return rec, errors.InvalidInput("invalid usage_time_minutes " + strconv.Quote(get("usage_time_minutes")))
	}

	return models.RegistrationRecord{
		ID:               id,
		Timestamp:        ts.UTC(),
		FullName:         get("full_name"),
		StudentID:        get("student_id"),
		Email:            get("email"),
		Grade:            get("grade"),
		Campus:           get("campus"),
		Major:            get("major"),
		CourseName:       get("course_name"),
		CourseID:         get("course_id"),
		Professor:        get("professor"),
		ProfessorEmail:   get("professor_email"),
		UsageTimeMinutes: usage,
	}, nil
}
