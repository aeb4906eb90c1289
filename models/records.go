package models

import (
	"time"
)

// RegistrationRecord is one row of the registrations table
type RegistrationRecord struct {
	ID               int64     `json:"id" db:"id"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
	FullName         string    `json:"full_name" db:"full_name"`
	StudentID        string    `json:"student_id" db:"student_id"`
	Email            string    `json:"email" db:"email"`
	Grade            string    `json:"grade" db:"grade"`
	Campus           string    `json:"campus" db:"campus"`
	Major            string    `json:"major" db:"major"`
	CourseName       string    `json:"course_name" db:"course_name"`
	CourseID         string    `json:"course_id" db:"course_id"`
	Professor        string    `json:"professor" db:"professor"`
	ProfessorEmail   string    `json:"professor_email" db:"professor_email"`
	UsageTimeMinutes float64   `json:"usage_time_minutes" db:"usage_time_minutes"`
}

// FeedbackRecord is one post-session rating
type FeedbackRecord struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	Rating     int       `json:"rating" db:"rating"`
	Topic      string    `json:"topic" db:"topic"`
	Difficulty int       `json:"difficulty" db:"difficulty"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// TopicRecord tracks what a session covered
type TopicRecord struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	Topic      string    `json:"topic" db:"topic"`
	Difficulty int       `json:"difficulty" db:"difficulty"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// CompletionRecord marks whether a session reached feedback
type CompletionRecord struct {
	ID        int64     `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Completed bool      `json:"completed" db:"completed"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// RegistrationFilter restricts a registrations query. Zero values mean no restriction.
type RegistrationFilter struct {
	From     *time.Time
	To       *time.Time
	Majors   []string
	Campuses []string
}

// IsZero reports whether the filter restricts nothing
func (f RegistrationFilter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.Majors) == 0 && len(f.Campuses) == 0
}

// Dataset bundles every table for reporting and export
type Dataset struct {
	Registrations []RegistrationRecord
	Feedback      []FeedbackRecord
	Topics        []TopicRecord
	Completions   []CompletionRecord
}
