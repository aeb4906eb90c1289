package registration

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"nuanswers/internal/errors"
)

var (
	validate *validator.Validate

	courseIDPattern = regexp.MustCompile(`^(` + strings.Join(CoursePrefixes, "|") + `)_\d{4}_\d{2}$`)

	// custom validation tags
	notBlankTag       = "notblank"
	studentIDTag      = "student_id"
	studentEmailTag   = "student_email"
	professorEmailTag = "professor_email"
	courseIDTag       = "course_id"
	gradeTag          = "grade"
	campusTag         = "campus"
	majorTag          = "major"
)

// Field error messages shown beside the form
const (
	MsgRequired       = "Please fill in all required fields."
	MsgStudentID      = "FDU Student ID must be exactly 7 digits."
	MsgStudentEmail   = "Please use your FDU email address (@student.fdu.edu or @fdu.edu)"
	MsgCourseID       = "Invalid Course ID format. Please use one of the following formats: ACCT_####_##, ECON_####_##, FIN_####_##, MIS_####_##, WMA_####_## where # represents a digit."
	MsgProfessorEmail = "Professor's email must end with @fdu.edu"
	MsgChoice         = "Please choose one of the listed options."
)

func init() {
	validate = validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlank)
	_ = validate.RegisterValidation(studentIDTag, stringRule(ValidStudentID))
	_ = validate.RegisterValidation(studentEmailTag, stringRule(ValidStudentEmail))
	_ = validate.RegisterValidation(professorEmailTag, stringRule(ValidProfessorEmail))
	_ = validate.RegisterValidation(courseIDTag, stringRule(ValidCourseID))
	_ = validate.RegisterValidation(gradeTag, stringRule(isGrade))
	_ = validate.RegisterValidation(campusTag, stringRule(isCampus))
	_ = validate.RegisterValidation(majorTag, stringRule(isMajor))
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		return ok && fn(str)
	}
}

// ValidStudentID reports whether s is exactly seven ASCII digits
func ValidStudentID(s string) bool {
	if len(s) != StudentIDDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidStudentEmail checks the lower-cased address against the student suffixes
func ValidStudentEmail(s string) bool {
	s = strings.ToLower(s)
	for _, suffix := range StudentEmailSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			return true
		}
	}
	return false
}

// ValidProfessorEmail checks the lower-cased address against the faculty suffix
func ValidProfessorEmail(s string) bool {
	s = strings.ToLower(s)
	return strings.HasSuffix(s, ProfessorEmailSuffix) && len(s) > len(ProfessorEmailSuffix)
}

// ValidCourseID checks PREFIX_####_## against the prefix allow-list
func ValidCourseID(s string) bool {
	return courseIDPattern.MatchString(s)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return MsgRequired
	case studentIDTag:
		return MsgStudentID
	case studentEmailTag:
		return MsgStudentEmail
	case courseIDTag:
		return MsgCourseID
	case professorEmailTag:
		return MsgProfessorEmail
	default:
		return MsgChoice
	}
}

// Validate runs every rule and reports all failing fields together.
// The summary message is the first failing check in form order.
func Validate(f Form) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "registration validation")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return errors.ValidationFields(summary(fields), fields)
}

// summary follows the check order: required fields, id, email, course, professor email
func summary(fields map[string]string) string {
	for _, msg := range fields {
		if msg == MsgRequired {
			return MsgRequired
		}
	}
	order := []struct{ field, msg string }{
		{"student_id", "Please enter a valid 7-digit FDU Student ID."},
		{"email", "Please enter a valid FDU email address."},
		{"course_id", "Please enter a valid Course ID format."},
		{"professor_email", "Please enter a valid Professor's email address."},
	}
	for _, o := range order {
		if _, ok := fields[o.field]; ok {
			return o.msg
		}
	}
	return MsgChoice
}
