package export

import (
	"io"
	"time"

	"nuanswers/adapters/excel"
	"nuanswers/models"
)

// Sheet names of the full export
const (
	SheetRegistrations = "Registrations"
	SheetFeedback      = "Feedback"
	SheetTopics        = "Topics"
	SheetCompletions   = "Completions"
)

// spreadsheet cells carry no zone; they show the stored UTC wall clock
func naive(t time.Time) time.Time { return t.UTC() }

// RegistrationsSheet renders registrations as a typed worksheet
func RegistrationsSheet(recs []models.RegistrationRecord) excel.Sheet {
	rows := make([][]interface{}, 0, len(recs)+1)
	rows = append(rows, header(RegistrationColumns))
	for _, r := range recs {
		rows = append(rows, []interface{}{
			r.ID, naive(r.Timestamp), r.FullName, r.StudentID, r.Email, r.Grade, r.Campus, r.Major,
			r.CourseName, r.CourseID, r.Professor, r.ProfessorEmail, r.UsageTimeMinutes,
		})
	}
	return excel.Sheet{Name: SheetRegistrations, Values: rows}
}

func feedbackSheet(recs []models.FeedbackRecord) excel.Sheet {
	rows := [][]interface{}{header([]string{"id", "student_id", "course_id", "rating", "topic", "difficulty", "timestamp"})}
	for _, f := range recs {
		rows = append(rows, []interface{}{f.ID, f.StudentID, f.CourseID, f.Rating, f.Topic, f.Difficulty, naive(f.Timestamp)})
	}
	return excel.Sheet{Name: SheetFeedback, Values: rows}
}

func topicsSheet(recs []models.TopicRecord) excel.Sheet {
	rows := [][]interface{}{header([]string{"id", "student_id", "course_id", "topic", "difficulty", "timestamp"})}
	for _, t := range recs {
		rows = append(rows, []interface{}{t.ID, t.StudentID, t.CourseID, t.Topic, t.Difficulty, naive(t.Timestamp)})
	}
	return excel.Sheet{Name: SheetTopics, Values: rows}
}

func completionsSheet(recs []models.CompletionRecord) excel.Sheet {
	rows := [][]interface{}{header([]string{"id", "student_id", "course_id", "completed", "timestamp"})}
	for _, c := range recs {
		rows = append(rows, []interface{}{c.ID, c.StudentID, c.CourseID, c.Completed, naive(c.Timestamp)})
	}
	return excel.Sheet{Name: SheetCompletions, Values: rows}
}

func header(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

// WriteRegistrationsXLSX writes a single-sheet workbook of registrations
func WriteRegistrationsXLSX(w io.Writer, recs []models.RegistrationRecord) error {
	return excel.Write(w, &excel.Workbook{Sheets: []excel.Sheet{RegistrationsSheet(recs)}})
}

// WriteWorkbook writes every table to its own sheet
func WriteWorkbook(w io.Writer, ds *models.Dataset) error {
	return excel.Write(w, &excel.Workbook{Sheets: []excel.Sheet{
		RegistrationsSheet(ds.Registrations),
		feedbackSheet(ds.Feedback),
		topicsSheet(ds.Topics),
		completionsSheet(ds.Completions),
	}})
}
