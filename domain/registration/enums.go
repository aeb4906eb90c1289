package registration

// Grade is the student's academic year
type Grade string

const (
	GradeFreshman  Grade = "Freshman"
	GradeSophomore Grade = "Sophomore"
	GradeJunior    Grade = "Junior"
	GradeSenior    Grade = "Senior"
	GradeGraduate  Grade = "Graduate"
)

// Grades lists grades in form order
var Grades = []Grade{GradeFreshman, GradeSophomore, GradeJunior, GradeSenior, GradeGraduate}

// Campus is the student's home campus
type Campus string

const (
	CampusFlorham   Campus = "Florham"
	CampusMetro     Campus = "Metro"
	CampusVancouver Campus = "Vancouver"
)

// Campuses lists campuses in form order
var Campuses = []Campus{CampusFlorham, CampusMetro, CampusVancouver}

// Major is the student's declared major
type Major string

const (
	MajorAccounting Major = "Accounting"
	MajorFinance    Major = "Finance"
	MajorMIS        Major = "MIS [Management Information Systems]"
)

// Majors lists majors in form order
var Majors = []Major{MajorAccounting, MajorFinance, MajorMIS}

// Institutional address suffixes
var (
	StudentEmailSuffixes = []string{"@student.fdu.edu", "@fdu.edu"}
	ProfessorEmailSuffix = "@fdu.edu"
	CoursePrefixes       = []string{"ACCT", "ECON", "FIN", "MIS", "WMA"}
	StudentIDDigits      = 7
)

func isGrade(s string) bool {
	for _, g := range Grades {
		if string(g) == s {
			return true
		}
	}
	return false
}

func isCampus(s string) bool {
	for _, c := range Campuses {
		if string(c) == s {
			return true
		}
	}
	return false
}

func isMajor(s string) bool {
	for _, m := range Majors {
		if string(m) == s {
			return true
		}
	}
	return false
}
