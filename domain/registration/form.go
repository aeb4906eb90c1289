package registration

import (
	"strings"
	"time"
)

// Form is the registration form as submitted
type Form struct {
	FullName       string `json:"full_name" form:"full_name" validate:"notblank"`
	StudentID      string `json:"student_id" form:"student_id" validate:"notblank,student_id"`
	Email          string `json:"email" form:"email" validate:"notblank,student_email"`
	Grade          string `json:"grade" form:"grade" validate:"grade"`
	Campus         string `json:"campus" form:"campus" validate:"campus"`
	Major          string `json:"major" form:"major" validate:"major"`
	CourseName     string `json:"course_name" form:"course_name" validate:"notblank"`
	CourseID       string `json:"course_id" form:"course_id" validate:"notblank,course_id"`
	Professor      string `json:"professor" form:"professor" validate:"notblank"`
	ProfessorEmail string `json:"professor_email" form:"professor_email" validate:"notblank,professor_email"`
}

// Normalize lower-cases both email addresses and trims free text
func (f Form) Normalize() Form {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.CourseName = strings.TrimSpace(f.CourseName)
	f.CourseID = strings.TrimSpace(f.CourseID)
	f.Professor = strings.TrimSpace(f.Professor)
	f.ProfessorEmail = strings.ToLower(strings.TrimSpace(f.ProfessorEmail))
	return f
}

// Registration is a validated form plus its server timestamp. Immutable once built.
type Registration struct {
	Form
	Timestamp time.Time `json:"timestamp"`
}

// Build validates the form and, on success, stamps it with now in UTC
func Build(f Form, now time.Time) (Registration, error) {
	f = f.Normalize()
	if err := Validate(f); err != nil {
		return Registration{}, err
	}
	return Registration{Form: f, Timestamp: now.UTC()}, nil
}
